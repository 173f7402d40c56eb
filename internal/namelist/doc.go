// Package namelist описывает входные параметры Quantum ESPRESSO.
//
// Value — типизированный скаляр, который сам знает свою запись
// (.true., 'строка', 1d-9). Config — неизменяемый упорядоченный набор
// секций &name ... /, изменения через With возвращают копию.
package namelist
