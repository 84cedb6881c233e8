// Package taylor builds Taylor polynomial approximations and their
// convergence diagnostics.
//
// PIPELINE:
//
// 1. Coefficients: c[k] = f^(k)(a) / k! for k = 0..n, from derivatives built
// by package diff and evaluated by package eval. A domain error at any
// order fails the whole analysis.
//
// 2. Polynomial: P_n(x) is accumulated term by term with a running power of
// dx = x - a, recording every partial sum P_k(x). P_n'(x) uses the closed
// form sum of k*c[k]*dx^(k-1).
//
// 3. References: f(x) and f'(x) are evaluated directly. Failures here are
// recovered: the field is left nil and a step records why.
//
// 4. Diagnostics: the convergence table reports relative error as undefined
// when f(x) == 0, while the value and derivative metrics use the damped
// form |approx - exact| / (|exact| + 1e-16). Both policies are kept.
//
// Every call is a pure function of its Input. An Analyzer holds only
// configuration and may be shared between goroutines.
package taylor
