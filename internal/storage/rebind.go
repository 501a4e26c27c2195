package storage

import (
	"strconv"
	"strings"
)

// rebind rewrites ?-style placeholders into the form the configured driver
// expects: $n for postgres, @pn for mssql, unchanged for mysql.
func rebind(driverType, query string) string {
	switch driverType {
	case "postgres", "mssql":
	default:
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		if driverType == "postgres" {
			b.WriteByte('$')
		} else {
			b.WriteString("@p")
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
