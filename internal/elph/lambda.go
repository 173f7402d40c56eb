package elph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shaiso/supercon/internal/domain"
)

// BroadeningMarker — подстрока, по которой строка файла lambda
// считается записью для одного значения уширения.
const BroadeningMarker = "Broadening"

// Позиции токенов в строке вида
//
//	Broadening   0.0050 lambda       0.5500 dos(Ef)  5.1234 omega_ln [K]   450.2000
const (
	broadeningToken = 1
	lambdaToken     = 3
)

// ParseCouplingFile читает файл lambda и возвращает записи в порядке файла.
//
// Строки без маркера пропускаются. Файл без подходящих строк даёт пустой
// результат без ошибки: вызывающий сам решает, считать ли это сбоем.
// Нечитаемый файл или нечисловые токены дают *ParseError.
func ParseCouplingFile(path string) ([]domain.CouplingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := parseCoupling(f)
	if err != nil {
		if pErr, ok := err.(*ParseError); ok {
			pErr.Path = path
		}
		return nil, err
	}
	return records, nil
}

// ParseCoupling разбирает содержимое файла lambda из io.Reader.
func ParseCoupling(r io.Reader) ([]domain.CouplingRecord, error) {
	return parseCoupling(r)
}

func parseCoupling(r io.Reader) ([]domain.CouplingRecord, error) {
	records := make([]domain.CouplingRecord, 0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, BroadeningMarker) {
			continue
		}

		rec, err := parseRecord(strings.Fields(line))
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Err: err}
	}

	return records, nil
}

func parseRecord(tokens []string) (domain.CouplingRecord, error) {
	var rec domain.CouplingRecord

	if len(tokens) <= lambdaToken {
		return rec, fmt.Errorf("expected at least %d tokens, got %d", lambdaToken+1, len(tokens))
	}

	var err error
	if rec.Lambda, err = parseFloat(tokens[lambdaToken]); err != nil {
		return rec, fmt.Errorf("lambda: %w", err)
	}
	if rec.Wlog, err = parseFloat(tokens[len(tokens)-1]); err != nil {
		return rec, fmt.Errorf("wlog: %w", err)
	}
	// уширение информативно, нечисловое значение не мешает расчёту Tc
	if b, err := parseFloat(tokens[broadeningToken]); err == nil {
		rec.Broadening = b
	}

	return rec, nil
}

// parseFloat понимает и фортрановскую экспоненту (1.0D-02).
func parseFloat(s string) (float64, error) {
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}
