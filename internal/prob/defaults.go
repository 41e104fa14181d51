package prob

// Entry names used by the reference grammar.
const (
	StdUnaryFunc       = "std_unary_func_prob"
	ShiftByNonConstant = "shift_by_non_constant_prob"
	RegularVolatile    = "regular_volatile_prob"
	RegularConst       = "regular_const_prob"
	MoreStatements     = "more_statements_prob"
	ConstantOperand    = "constant_operand_prob"
	StatementGroup     = "statement_prob"
	UnaryOpsGroup      = "unary_ops_prob"
	BinaryOpsGroup     = "binary_ops_prob"
	SimpleTypesGroup   = "simple_types_prob"
	SafeOpsSizeGroup   = "safe_ops_size_prob"
	StatementBlock     = "statement_block_prob"
	StatementIfElse    = "statement_ifelse_prob"
	StatementFor       = "statement_for_prob"
	StatementReturn    = "statement_return_prob"
	StatementAssign    = "statement_assign_prob"
)

// Defaults returns a table with the built-in catalog.
func Defaults() *Table {
	t := New()
	must(t.AddSingle(MoreStatements, 60))
	must(t.AddSingle(ConstantOperand, 40))
	must(t.AddSingle(StdUnaryFunc, 5))
	must(t.AddSingle(ShiftByNonConstant, 50))
	must(t.AddSingle(RegularVolatile, 50))
	must(t.AddSingle(RegularConst, 10))

	must(t.AddGroup(StatementGroup, false,
		Member{StatementBlock, 0},
		Member{StatementIfElse, 15},
		Member{StatementFor, 30},
		Member{StatementReturn, 35},
		Member{StatementAssign, 100},
	))
	must(t.AddGroup(UnaryOpsGroup, true,
		Member{"unary_plus_prob", 0},
		Member{"unary_minus_prob", 1},
		Member{"unary_not_prob", 1},
		Member{"unary_bit_not_prob", 1},
	))
	must(t.AddGroup(BinaryOpsGroup, true,
		Member{"binary_add_prob", 1},
		Member{"binary_sub_prob", 1},
		Member{"binary_mul_prob", 1},
		Member{"binary_div_prob", 1},
		Member{"binary_mod_prob", 1},
		Member{"binary_gt_prob", 1},
		Member{"binary_lt_prob", 1},
		Member{"binary_ge_prob", 1},
		Member{"binary_le_prob", 1},
		Member{"binary_eq_prob", 1},
		Member{"binary_ne_prob", 1},
		Member{"binary_and_prob", 1},
		Member{"binary_or_prob", 1},
		Member{"binary_bit_xor_prob", 1},
		Member{"binary_bit_and_prob", 1},
		Member{"binary_bit_or_prob", 1},
		Member{"binary_bit_rshift_prob", 1},
		Member{"binary_bit_lshift_prob", 1},
	))
	must(t.AddGroup(SimpleTypesGroup, true,
		Member{"void_prob", 0},
		Member{"char_prob", 1},
		Member{"int_prob", 1},
		Member{"short_prob", 1},
		Member{"long_prob", 1},
		Member{"uchar_prob", 1},
		Member{"uint_prob", 1},
		Member{"ushort_prob", 1},
		Member{"ulong_prob", 1},
		Member{"long_long_prob", 1},
		Member{"ulong_long_prob", 1},
		Member{"float_prob", 0},
	))
	must(t.AddGroup(SafeOpsSizeGroup, true,
		Member{"safe_ops_size_int8", 1},
		Member{"safe_ops_size_int16", 1},
		Member{"safe_ops_size_int32", 1},
		Member{"safe_ops_size_int64", 1},
	))
	return t
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
