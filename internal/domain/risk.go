package domain

// RiskLevel grades how destructive a command could be.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity orders levels; unknown levels rank as safe.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// GuardrailAction is what run does with a replayed command.
type GuardrailAction string

// ActionConfirm asks even when --yes is given or confirm_before_execute is false.
const (
	ActionAllow   GuardrailAction = "allow"
	ActionConfirm GuardrailAction = "confirm"
	ActionBlock   GuardrailAction = "block"
)

// RiskAssessment is the guardrail verdict for one command.
type RiskAssessment struct {
	Level        RiskLevel
	Action       GuardrailAction
	Reasons      []string
	MatchedRules []string
}

// Risky reports whether the command needs more than the normal flow.
func (r RiskAssessment) Risky() bool {
	return r.Action == ActionConfirm || r.Action == ActionBlock
}
