package grammar

var simpleTypes = map[string]string{
	"void_prob":       "void",
	"char_prob":       "char",
	"int_prob":        "int",
	"short_prob":      "short",
	"long_prob":       "long",
	"uchar_prob":      "unsigned char",
	"uint_prob":       "unsigned int",
	"ushort_prob":     "unsigned short",
	"ulong_prob":      "unsigned long",
	"long_long_prob":  "long long",
	"ulong_long_prob": "unsigned long long",
	"float_prob":      "float",
}

var unaryOps = map[string]string{
	"unary_plus_prob":    "+",
	"unary_minus_prob":   "-",
	"unary_not_prob":     "!",
	"unary_bit_not_prob": "~",
}

type binaryOp struct {
	token string
	// safe names the checked helper used instead of the bare operator.
	safe  string
	shift bool
}

var binaryOps = map[string]binaryOp{
	"binary_add_prob":        {token: "+"},
	"binary_sub_prob":        {token: "-"},
	"binary_mul_prob":        {token: "*"},
	"binary_div_prob":        {token: "/", safe: "div"},
	"binary_mod_prob":        {token: "%", safe: "mod"},
	"binary_gt_prob":         {token: ">"},
	"binary_lt_prob":         {token: "<"},
	"binary_ge_prob":         {token: ">="},
	"binary_le_prob":         {token: "<="},
	"binary_eq_prob":         {token: "=="},
	"binary_ne_prob":         {token: "!="},
	"binary_and_prob":        {token: "&&"},
	"binary_or_prob":         {token: "||"},
	"binary_bit_xor_prob":    {token: "^"},
	"binary_bit_and_prob":    {token: "&"},
	"binary_bit_or_prob":     {token: "|"},
	"binary_bit_rshift_prob": {token: ">>", safe: "rshift", shift: true},
	"binary_bit_lshift_prob": {token: "<<", safe: "lshift", shift: true},
}

var safeSizes = map[string]string{
	"safe_ops_size_int8":  "int8_t",
	"safe_ops_size_int16": "int16_t",
	"safe_ops_size_int32": "int32_t",
	"safe_ops_size_int64": "int64_t",
}
