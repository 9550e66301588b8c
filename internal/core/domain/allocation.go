package domain

// AllocationEntry is one row of an upload batch: the participant's new
// remaining entitlement within a campaign.
type AllocationEntry struct {
	Participant Address
	Amount      uint64
	CampaignID  int64
}

// Allocation is a participant's remaining, unclaimed share within a
// campaign.
type Allocation struct {
	CampaignID  int64
	Participant Address
	Remaining   uint64
}
