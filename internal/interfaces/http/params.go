package http

import (
	"strings"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
)

const dateLayout = "2006-01-02"

// parseDay interpreta YYYY-MM-DD en la zona local.
func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, domain.NewInvalidState("fecha inválida %q (formato YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseRange convierte from/to (YYYY-MM-DD, to inclusive) en el rango [from, to+1d).
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := parseDay(from)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if to != "" {
		t, err := parseDay(to)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, domain.NewInvalidState("el rango de fechas es inválido")
	}
	return start, end, nil
}
