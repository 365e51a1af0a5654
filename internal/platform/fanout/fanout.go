// Package fanout entrega un mismo mensaje a varios destinatarios de forma
// independiente: el fallo de uno no impide ni deshace los demás. Sin reintentos.
package fanout

import (
	"context"
	"fmt"
	"sync"
)

// Result es el desenlace de un destinatario.
type Result struct {
	Recipient string
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

// Report conserva el orden de los destinatarios recibidos.
type Report struct {
	Results []Result
}

func (r Report) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Deliver llama a send una vez por destinatario, en paralelo.
// Un panic en send cuenta como fallo de ese destinatario.
func Deliver(ctx context.Context, recipients []string, send func(ctx context.Context, recipient string) error) Report {
	results := make([]Result, len(recipients))

	var wg sync.WaitGroup
	for i, rcpt := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Result{Recipient: rcpt, Err: call(ctx, rcpt, send)}
		}()
	}
	wg.Wait()

	return Report{Results: results}
}

func call(ctx context.Context, rcpt string, send func(context.Context, string) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic delivering to %s: %v", rcpt, p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return send(ctx, rcpt)
}
