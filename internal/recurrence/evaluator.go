package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrEmptyRule   = errors.New("recurrence rule is empty")
	ErrInvalidRule = errors.New("invalid recurrence rule")
)

// Evaluator expande una regla RRULE (RFC 5545) anclada en anchor.
// La librería concreta queda detrás de esta interfaz.
type Evaluator interface {
	// Between devuelve hasta limit ocurrencias en [from, until], ambos inclusive.
	// until siempre acota la enumeración, aunque la regla no tenga COUNT ni UNTIL.
	// truncated indica que había más de limit; limit <= 0 es sin tope.
	Between(rule string, anchor, from, until time.Time, limit int) (starts []time.Time, truncated bool, err error)

	// Check parsea la regla sin enumerar ocurrencias.
	Check(rule string, anchor time.Time) error
}

// RRuleEvaluator implementa Evaluator con teambition/rrule-go.
type RRuleEvaluator struct{}

func NewRRuleEvaluator() *RRuleEvaluator {
	return &RRuleEvaluator{}
}

func (e *RRuleEvaluator) Between(rule string, anchor, from, until time.Time, limit int) ([]time.Time, bool, error) {
	if until.Before(from) {
		return nil, false, nil
	}

	r, err := e.build(rule, anchor, from, until)
	if err != nil {
		return nil, false, err
	}

	// Iterador en vez de r.Between: el tope corta la enumeración, no solo la salida.
	next := r.Iterator()
	out := make([]time.Time, 0)
	for {
		t, ok := next()
		if !ok || t.After(until) {
			return out, false, nil
		}
		if t.Before(from) {
			continue
		}
		if limit > 0 && len(out) == limit {
			return out, true, nil
		}
		out = append(out, t)
	}
}

func (e *RRuleEvaluator) Check(rule string, anchor time.Time) error {
	_, err := e.build(rule, anchor, time.Time{}, time.Time{})
	return err
}

func (e *RRuleEvaluator) build(rule string, anchor, from, until time.Time) (*rrule.RRule, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, ErrEmptyRule
	}

	opt, err := rrule.StrToROptionInLocation(rule, anchor.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	// El ancla manda sobre cualquier DTSTART embebido en la regla.
	opt.Dtstart = fastForward(opt, anchor, from)
	if !until.IsZero() && (opt.Until.IsZero() || opt.Until.After(until)) {
		opt.Until = until
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return r, nil
}

// fastForward adelanta el DTSTART de reglas sub-diarias sin COUNT hasta cerca de from,
// en días enteros múltiplos de INTERVAL, para no iterar todo lo anterior a la ventana.
// rrule-go avanza horas, minutos y segundos sobre la hora de pared, así que la grilla
// de la regla se conserva.
func fastForward(opt *rrule.ROption, anchor, from time.Time) time.Time {
	if from.IsZero() || opt.Count != 0 || opt.Freq < rrule.HOURLY {
		return anchor
	}

	interval := opt.Interval
	if interval < 1 {
		interval = 1
	}

	days := int(from.Sub(anchor).Hours()/24) - 1
	days -= days % interval
	if days <= 0 {
		return anchor
	}
	return anchor.AddDate(0, 0, days)
}
