package maintenance

type RepairPayload struct {
	MarkMissing bool `json:"mark_missing"`
}
