package taylor

import (
	"fmt"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/eval"
	"github.com/roach88/taylorlab/internal/expr"
)

// BuildCoefficients returns c[k] = f^(k)(center) / k! for k = 0..order.
//
// The result is all or nothing: a domain error at any order fails the call
// with the order in the message.
func BuildCoefficients(e expr.Expr, center float64, order int, opts ...diff.Option) (Coefficients, error) {
	derivs, err := diff.Sequence(e, order, opts...)
	if err != nil {
		return nil, err
	}
	coefs, _, err := coefficientsOf(derivs, center)
	return coefs, err
}

// coefficientsOf evaluates derivs[k] at center and divides by k!. It also
// returns the undivided derivative values.
func coefficientsOf(derivs []expr.Expr, center float64) (Coefficients, []float64, error) {
	coefs := make(Coefficients, len(derivs))
	values := make([]float64, len(derivs))
	factorial := 1.0
	for k, d := range derivs {
		if k > 0 {
			factorial *= float64(k)
		}
		v, err := eval.Evaluate(d, center)
		if err != nil {
			return nil, nil, fmt.Errorf("coefficient %d: derivative undefined at center %g: %w", k, center, err)
		}
		values[k] = v
		coefs[k] = v / factorial
	}
	return coefs, values, nil
}
