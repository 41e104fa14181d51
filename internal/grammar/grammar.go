package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/prob"
)

// Production kinds checked against the depth guard.
const (
	KindStatement = "statement"
	KindExpr      = "expr"
)

// Defaults for the structural limits.
const (
	DefaultMaxStatements = 6
	DefaultMaxNesting    = 2
	DefaultMaxExprDepth  = 2
	DefaultMaxVars       = 3
)

// MinDepth returns a lower bound on the decisions a production needs.
// A statement needs at least its kind, one operand form and a leaf; an
// expression at least a form and a leaf.
func MinDepth(kind string, _ int) int {
	switch kind {
	case KindStatement:
		return 3
	case KindExpr:
		return 2
	}
	return 0
}

// Grammar generates programs. It is stateless between attempts and may be
// shared by consecutive runs over the same table.
type Grammar struct {
	probs *prob.Table
	guard *engine.DepthGuard

	maxStatements int
	maxNesting    int
	maxExprDepth  int
	maxVars       int
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithMaxStatements caps the statements of one block.
func WithMaxStatements(n int) Option {
	return func(g *Grammar) {
		if n > 0 {
			g.maxStatements = n
		}
	}
}

// WithMaxNesting caps the nesting of if/else and for bodies.
func WithMaxNesting(n int) Option {
	return func(g *Grammar) {
		if n >= 0 {
			g.maxNesting = n
		}
	}
}

// WithMaxExprDepth caps the operator depth of expressions.
func WithMaxExprDepth(n int) Option {
	return func(g *Grammar) {
		if n >= 0 {
			g.maxExprDepth = n
		}
	}
}

// WithMaxVars caps the local variables of the function.
func WithMaxVars(n int) Option {
	return func(g *Grammar) {
		if n > 0 {
			g.maxVars = n
		}
	}
}

// New creates a grammar over probs.
func New(probs *prob.Table, opts ...Option) *Grammar {
	g := &Grammar{
		probs:         probs,
		guard:         engine.NewDepthGuard(MinDepth),
		maxStatements: DefaultMaxStatements,
		maxNesting:    DefaultMaxNesting,
		maxExprDepth:  DefaultMaxExprDepth,
		maxVars:       DefaultMaxVars,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds one program. It implements engine.Generator.
func (g *Grammar) Generate(at *engine.Attempt) (string, error) {
	s := &state{Grammar: g, at: at}
	return s.program()
}

type variable struct {
	name     string
	typ      string
	volatile bool
}

// state is the per-attempt generation context.
type state struct {
	*Grammar
	at *engine.Attempt

	vars   []variable
	consts []string
	loops  int
}

func (s *state) program() (string, error) {
	var decls strings.Builder

	n, err := s.at.ChooseUpto(s.maxVars, nil, "vars")
	if err != nil {
		return "", err
	}
	for i := 0; i <= n; i++ {
		v, value, err := s.declare(i)
		if err != nil {
			return "", err
		}
		qual := ""
		if v.volatile {
			qual = "volatile "
		}
		fmt.Fprintf(&decls, "\t%s%s %s = %s;\n", qual, v.typ, v.name, value)
		s.vars = append(s.vars, v)
	}

	var globals strings.Builder
	withConst, err := s.probs.Flip(s.at, prob.RegularConst)
	if err != nil {
		return "", err
	}
	if withConst {
		c, err := s.constant()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&globals, "static const int k0 = %s;\n\n", c)
		s.consts = append(s.consts, "k0")
	}

	var body strings.Builder
	returned, err := s.block(&body, 1, 0)
	if err != nil {
		return "", err
	}
	if !returned {
		fmt.Fprintf(&body, "\treturn (int)%s;\n", s.vars[0].name)
	}

	var b strings.Builder
	b.WriteString(globals.String())
	fmt.Fprintf(&b, "int %s(void)\n{\n", s.at.PrefixedName("fn"))
	b.WriteString(decls.String())
	b.WriteString(body.String())
	b.WriteString("}\n")
	return b.String(), nil
}

func (s *state) declare(i int) (variable, string, error) {
	name, err := s.probs.SelectExcept(s.at, prob.SimpleTypesGroup, "void_prob")
	if err != nil {
		return variable{}, "", err
	}
	typ, ok := simpleTypes[name]
	if !ok {
		return variable{}, "", fmt.Errorf("no C type for %s", name)
	}
	vol, err := s.probs.Flip(s.at, prob.RegularVolatile)
	if err != nil {
		return variable{}, "", err
	}
	value, err := s.constant()
	if err != nil {
		return variable{}, "", err
	}
	return variable{name: "v" + strconv.Itoa(i), typ: typ, volatile: vol}, value, nil
}

// block writes statements at the given indent until the grammar stops or a
// return ends the block. It reports whether the block ended with a return.
func (s *state) block(w *strings.Builder, indent, nest int) (bool, error) {
	for i := 0; i < s.maxStatements; i++ {
		returned, err := s.statement(w, indent, nest)
		if err != nil {
			return false, err
		}
		if returned {
			return true, nil
		}
		if i+1 == s.maxStatements {
			break
		}
		more, err := s.probs.Flip(s.at, prob.MoreStatements)
		if err != nil {
			return false, err
		}
		if !more {
			break
		}
	}
	return false, nil
}

func (s *state) statement(w *strings.Builder, indent, nest int) (bool, error) {
	if s.guard.Check(s.at, KindStatement, nest) == engine.Prune {
		return false, s.at.Err()
	}

	var except []string
	if nest >= s.maxNesting {
		except = []string{prob.StatementBlock, prob.StatementIfElse, prob.StatementFor}
	}
	kind, err := s.probs.SelectExcept(s.at, prob.StatementGroup, except...)
	if err != nil {
		return false, err
	}

	tab := strings.Repeat("\t", indent)
	switch kind {
	case prob.StatementAssign:
		t, err := s.at.ChooseUpto(len(s.vars), nil, "target")
		if err != nil {
			return false, err
		}
		e, err := s.expr(0)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s%s = %s;\n", tab, s.vars[t].name, e)

	case prob.StatementReturn:
		e, err := s.expr(0)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%sreturn (int)(%s);\n", tab, e)
		return true, nil

	case prob.StatementIfElse:
		cond, err := s.expr(0)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%sif (%s) {\n", tab, cond)
		if _, err := s.block(w, indent+1, nest+1); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s} else {\n", tab)
		if _, err := s.block(w, indent+1, nest+1); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s}\n", tab)

	case prob.StatementFor:
		trip, err := s.at.ChooseUpto(8, nil, "trip")
		if err != nil {
			return false, err
		}
		iv := "i" + strconv.Itoa(s.loops)
		s.loops++
		fmt.Fprintf(w, "%sfor (int %s = 0; %s < %d; %s++) {\n", tab, iv, iv, trip+1, iv)
		if _, err := s.block(w, indent+1, nest+1); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s}\n", tab)

	case prob.StatementBlock:
		fmt.Fprintf(w, "%s{\n", tab)
		returned, err := s.block(w, indent+1, nest+1)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s}\n", tab)
		return returned, nil

	default:
		return false, fmt.Errorf("unknown statement kind %s", kind)
	}
	return false, nil
}

// Expression forms.
const (
	formLeaf = iota
	formUnary
	formBinary
	numForms
)

func (s *state) expr(depth int) (string, error) {
	if depth >= s.maxExprDepth {
		return s.leaf()
	}
	form, err := s.at.ChooseUpto(numForms, nil, "expr")
	if err != nil {
		return "", err
	}
	switch form {
	case formUnary:
		return s.unary(depth)
	case formBinary:
		return s.binary(depth)
	}
	return s.leaf()
}

func (s *state) leaf() (string, error) {
	isConst, err := s.probs.Flip(s.at, prob.ConstantOperand)
	if err != nil {
		return "", err
	}
	if isConst {
		return s.constant()
	}
	pool := make([]string, 0, len(s.vars)+len(s.consts))
	for _, v := range s.vars {
		pool = append(pool, v.name)
	}
	pool = append(pool, s.consts...)
	i, err := s.at.ChooseUpto(len(pool), nil, "operand")
	if err != nil {
		return "", err
	}
	return pool[i], nil
}

// constant returns a decimal literal of one to three digits.
func (s *state) constant() (string, error) {
	width, err := s.at.ChooseUpto(3, nil, "width")
	if err != nil {
		return "", err
	}
	digits, err := s.at.DecDigits(width + 1)
	if err != nil {
		return "", err
	}
	if digits = strings.TrimLeft(digits, "0"); digits == "" {
		digits = "0"
	}
	return digits, nil
}

func (s *state) unary(depth int) (string, error) {
	name, err := s.probs.Select(s.at, prob.UnaryOpsGroup)
	if err != nil {
		return "", err
	}
	op, ok := unaryOps[name]
	if !ok {
		return "", fmt.Errorf("no operator for %s", name)
	}
	operand, err := s.expr(depth + 1)
	if err != nil {
		return "", err
	}
	e := "(" + op + operand + ")"

	std, err := s.probs.Flip(s.at, prob.StdUnaryFunc)
	if err != nil {
		return "", err
	}
	if std {
		e = "abs" + e
	}
	return e, nil
}

func (s *state) binary(depth int) (string, error) {
	name, err := s.probs.Select(s.at, prob.BinaryOpsGroup)
	if err != nil {
		return "", err
	}
	op, ok := binaryOps[name]
	if !ok {
		return "", fmt.Errorf("no operator for %s", name)
	}

	lhs, err := s.expr(depth + 1)
	if err != nil {
		return "", err
	}

	var rhs string
	if op.shift {
		nonConst, err := s.probs.Flip(s.at, prob.ShiftByNonConstant)
		if err != nil {
			return "", err
		}
		if nonConst {
			rhs, err = s.expr(depth + 1)
		} else {
			var n int
			n, err = s.at.ChooseUpto(32, nil, "shift")
			rhs = strconv.Itoa(n)
		}
		if err != nil {
			return "", err
		}
	} else {
		if rhs, err = s.expr(depth + 1); err != nil {
			return "", err
		}
	}

	if op.safe == "" {
		return "(" + lhs + " " + op.token + " " + rhs + ")", nil
	}
	size, err := s.probs.Select(s.at, prob.SafeOpsSizeGroup)
	if err != nil {
		return "", err
	}
	width, ok := safeSizes[size]
	if !ok {
		return "", fmt.Errorf("no operand size for %s", size)
	}
	return fmt.Sprintf("safe_%s_func_%s_s(%s, %s)", op.safe, width, lhs, rhs), nil
}
