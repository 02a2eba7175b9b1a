package verdict

// Store keys for the five filter toggles.
const (
	KeyOneLiner = "oneLinerFilterEnabled"
	KeyAIReply  = "aiFilterEnabled"
	KeyAd       = "adFilterEnabled"
	KeyOldPost  = "oldPostFilterEnabled"
	KeyTerm     = "termFilterEnabled"
)

// ToggleSpec describes one toggle as shown on the panel.
type ToggleSpec struct {
	Key      string   `json:"key"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
}

// ToggleSpecs lists every toggle in panel order.
var ToggleSpecs = []ToggleSpec{
	{Key: KeyOneLiner, Category: CategoryOneLiner, Label: "Remove one-liner posts"},
	{Key: KeyAIReply, Category: CategoryAIReply, Label: "Remove AI replies"},
	{Key: KeyAd, Category: CategoryAd, Label: "Remove ads"},
	{Key: KeyOldPost, Category: CategoryOldPost, Label: "Remove posts older than 24h"},
	{Key: KeyTerm, Category: CategoryTerm, Label: "Remove posts with specific terms"},
}

// LookupToggle returns the ToggleSpec for a store key.
func LookupToggle(key string) (ToggleSpec, bool) {
	for _, s := range ToggleSpecs {
		if s.Key == key {
			return s, true
		}
	}
	return ToggleSpec{}, false
}

// Toggles is the filter configuration of one observation session.
type Toggles struct {
	OneLiner bool `json:"oneLinerFilterEnabled"`
	AIReply  bool `json:"aiFilterEnabled"`
	Ad       bool `json:"adFilterEnabled"`
	OldPost  bool `json:"oldPostFilterEnabled"`
	Term     bool `json:"termFilterEnabled"`
}

// Enabled reports whether the toggle for c is on.
func (t Toggles) Enabled(c Category) bool {
	switch c {
	case CategoryOneLiner:
		return t.OneLiner
	case CategoryAIReply:
		return t.AIReply
	case CategoryAd:
		return t.Ad
	case CategoryOldPost:
		return t.OldPost
	case CategoryTerm:
		return t.Term
	}
	return false
}

// Set switches the toggle for c.
func (t *Toggles) Set(c Category, on bool) {
	switch c {
	case CategoryOneLiner:
		t.OneLiner = on
	case CategoryAIReply:
		t.AIReply = on
	case CategoryAd:
		t.Ad = on
	case CategoryOldPost:
		t.OldPost = on
	case CategoryTerm:
		t.Term = on
	}
}

// Any reports whether at least one toggle is on.
func (t Toggles) Any() bool {
	return t.OneLiner || t.AIReply || t.Ad || t.OldPost || t.Term
}
