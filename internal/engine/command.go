package engine

import (
	"strings"

	"github.com/shaiso/supercon/internal/domain"
)

// CommandVariant подставляет нужный бинарник QE в команду движка.
//
// Команда задаётся для pw.x ("mpirun -np 4 /opt/qe/bin/pw.x"), остальные
// стадии используют ту же команду с заменой pw.x на ph.x, q2r.x или
// matdyn.x. Команда без pw.x — ошибка конфигурации.
func CommandVariant(cmd string, binary domain.Binary) (string, error) {
	if !strings.Contains(cmd, string(domain.BinaryPW)) {
		return "", NewConfigError("", "qe_cmd", "command "+quote(cmd)+" does not reference pw.x", ErrEngineCommand)
	}
	if binary == domain.BinaryPW {
		return cmd, nil
	}
	return strings.ReplaceAll(cmd, string(domain.BinaryPW), string(binary)), nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
