package parser

// Literal Pool Estimation Constants
const (
	// EstimatedLiteralsPerPool is the heuristic estimate for the number of literal values
	// typically stored in each literal pool section, used to reserve pool space before
	// the actual literal count is known (see adjustAddressesForDynamicPools). Category 6's
	// PC-relative load reaches at most 1020 bytes forward (offset8 * 4), so a pool placed
	// too far past its LDR pseudo-instructions is unreachable regardless of this estimate.
	EstimatedLiteralsPerPool = 16
)

// Macro Processing Constants
const (
	// MaxMacroNestingDepth is the maximum depth for nested macro expansions.
	// Prevents infinite recursion in macro processing.
	MaxMacroNestingDepth = 100
)
