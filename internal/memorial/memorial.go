package memorial

// Memorial is one grave record. All fields are values so two records can be
// compared with ==. Empty strings mean the page had no value; CemeteryID is 0
// when the memorial is not linked to a cemetery.
type Memorial struct {
	MemorialID    int64  `json:"memorial_id"`
	FindagraveURL string `json:"findagrave_url"`
	Prefix        string `json:"prefix"`
	Name          string `json:"name"`
	Suffix        string `json:"suffix"`
	Nickname      string `json:"nickname"`
	MaidenName    string `json:"maiden_name"`
	OriginalName  string `json:"original_name"`
	Famous        bool   `json:"famous"`
	Veteran       bool   `json:"veteran"`
	Birth         string `json:"birth"`
	BirthPlace    string `json:"birth_place"`
	Death         string `json:"death"`
	DeathPlace    string `json:"death_place"`
	MemorialType  string `json:"memorial_type"`
	BurialPlace   string `json:"burial_place"`
	CemeteryID    int64  `json:"cemetery_id"`
	Plot          string `json:"plot"`
	Coords        string `json:"coords"`
	HasBio        bool   `json:"has_bio"`
}

type Kind int

const (
	KindOK Kind = iota
	KindMerged
	KindRemoved
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMerged:
		return "merged"
	case KindRemoved:
		return "removed"
	case KindFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of resolving one memorial URL. Memorial is set for
// KindOK, NewURL for KindMerged and Err for every other kind.
type Result struct {
	Kind     Kind
	URL      string
	Memorial Memorial
	NewURL   string
	Err      error
}
