package valueobjects

type GiftStatus string

const (
	GiftStatusCompleted GiftStatus = "completed"
	GiftStatusPending   GiftStatus = "pending"
)

func (s GiftStatus) IsValid() bool {
	switch s {
	case GiftStatusCompleted, GiftStatusPending:
		return true
	default:
		return false
	}
}

func (s GiftStatus) String() string {
	return string(s)
}
