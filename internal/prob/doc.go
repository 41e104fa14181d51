// Package prob holds the probability configuration that steers the
// grammar.
//
// A Table contains single entries (a percentage used for one yes/no
// decision) and groups. An exclusive group picks one member: its weights
// are cumulative thresholds and exactly one member must reach 100. An
// equal group picks uniformly among its enabled members, each of which is
// either 0 (disabled) or 1 (enabled).
//
// Tables feed the decision core through filters. Filter(name) returns a
// predicate that rejects the values of disabled members, so a production
// switched off in the configuration is never sampled, whether decisions are
// random or enumerated.
//
// The text format, one entry per line:
//
//	# comment
//	std_unary_func_prob=5
//	[statement_prob,statement_ifelse_prob=15,statement_assign_prob=100]
//	(unary_ops_prob,unary_minus_prob=1,unary_not_prob=0)
package prob
