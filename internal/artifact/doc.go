// Package artifact архивирует файлы завершённых runs в S3-совместимое
// хранилище (MinIO).
//
// Сохраняются входные файлы, логи стадий, XML, динамические матрицы
// и файл lambda. Ключи объектов: runs/<run_id>/<file>.
package artifact
