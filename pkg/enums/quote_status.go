package enums

// QuoteStatus tracks a devis from draft to conversion.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRefused   QuoteStatus = "refused"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusRefused,
	QuoteStatusExpired,
	QuoteStatusConverted,
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:    {QuoteStatusSent, QuoteStatusAccepted},
	QuoteStatusSent:     {QuoteStatusAccepted, QuoteStatusRefused, QuoteStatusExpired, QuoteStatusDraft},
	QuoteStatusAccepted: {QuoteStatusConverted, QuoteStatusRefused},
	QuoteStatusExpired:  {QuoteStatusDraft},
	QuoteStatusRefused:  {QuoteStatusDraft},
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is known.
func (q QuoteStatus) IsValid() bool {
	return contains(validQuoteStatuses, q)
}

// Editable reports whether items may still change.
func (q QuoteStatus) Editable() bool {
	return q == QuoteStatusDraft || q == QuoteStatusSent
}

// CanTransitionTo reports whether next is reachable from q.
func (q QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return contains(quoteTransitions[q], next)
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	return parse(validQuoteStatuses, value, "quote status")
}
