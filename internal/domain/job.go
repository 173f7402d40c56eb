package domain

import (
	"time"

	"github.com/shaiso/supercon/internal/namelist"
)

// Binary — исполняемый файл Quantum ESPRESSO.
type Binary string

const (
	BinaryPW     Binary = "pw.x"
	BinaryPH     Binary = "ph.x"
	BinaryQ2R    Binary = "q2r.x"
	BinaryMatdyn Binary = "matdyn.x"
)

// String реализует fmt.Stringer.
func (b Binary) String() string {
	return string(b)
}

// Job — полное описание одного запуска движка.
//
// Job однозначно определяет воспроизводимый запуск: по нему строится
// входной файл, команда и ожидаемые артефакты. Job не содержит путей
// рабочей директории, их подставляет исполнитель.
type Job struct {
	// Stage — стадия workflow.
	Stage Stage

	// Name — имя задания (relax, scf_init, ph, qr, matdyn).
	Name string

	// Binary — какой исполняемый файл запускается.
	Binary Binary

	// Command — команда запуска с подставленным вариантом бинарника.
	Command string

	// Structure — структура, для которой выполняется расчёт.
	Structure Structure

	// Config — namelist-параметры входного файла.
	Config namelist.Config

	// KPoints — k-сетка. nil для ph.x, q2r.x, matdyn.x.
	KPoints *KPoints

	// InputFile — имя входного файла.
	InputFile string

	// OutputFile — имя лога вывода.
	OutputFile string

	// XMLFile — structured output (data-file-schema), если стадия его пишет.
	XMLFile string

	// Artifacts — файлы, которые стадия обязана создать.
	Artifacts []string
}

// JobResult — результат запуска движка.
type JobResult struct {
	Stage      Stage
	Name       string
	InputPath  string
	OutputPath string

	// XMLPath — путь к structured output. Пусто, если стадия его не пишет.
	XMLPath string

	ExitCode int
	Duration time.Duration
}
