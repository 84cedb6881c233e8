// Package expr provides the immutable expression tree for single-variable
// real functions.
//
// This package contains the tree types, smart constructors, renderers and
// the JSON codec. All other internal packages import expr; expr imports
// nothing internal.
//
// Key design constraints:
//   - Expr is a sealed interface: only Const, Var, Add, Mul, Pow and Func implement it
//   - Values are never mutated after construction; subtrees may be shared
//   - There is exactly one free variable, represented by the stateless Var tag
//   - Constructors simplify lightly but raw struct literals are valid trees too
//   - Fingerprints use RFC 8785 canonical JSON, constants encoded as strings
package expr
