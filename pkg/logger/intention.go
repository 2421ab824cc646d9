package logger

// Intention represents the semantic intent of a log line, orthogonal to level.
// The console handler maps it to an icon; file logs keep it as a structured key.
type Intention string

const (
	IntentionInbound    Intention = "inbound"
	IntentionOutbound   Intention = "outbound"
	IntentionInactivity Intention = "inactivity"
	IntentionHistory    Intention = "history"
	IntentionCompletion Intention = "completion"
	IntentionStatus     Intention = "status"
	IntentionConfig     Intention = "config"
	IntentionSuccess    Intention = "success"
	IntentionDebug      Intention = "debug"
)

// iconFor returns a short emoji string for console output for the intention.
func iconFor(i Intention) string {
	switch i {
	case IntentionInbound:
		return "📥"
	case IntentionOutbound:
		return "📤"
	case IntentionInactivity:
		return "⏰"
	case IntentionHistory:
		return "🗂️"
	case IntentionCompletion:
		return "🧠"
	case IntentionStatus:
		return "ℹ️"
	case IntentionConfig:
		return "⚙️"
	case IntentionSuccess:
		return "✅"
	case IntentionDebug:
		return "🛠️"
	default:
		return "➤"
	}
}
