// Package elph разбирает итоговый файл электрон-фононной связи (lambda)
// и вычисляет критическую температуру по формуле Allen-Dynes.
package elph
