package datacite

// Attributes is the subset of the DataCite DOI schema the normalizer
// reads.
type Attributes struct {
	Titles    []Title     `json:"titles"`
	Types     Types       `json:"types"`
	Publisher string      `json:"publisher"`
	Container Container   `json:"container"`
	Creators  []Creator   `json:"creators"`
	Dates     []DateEntry `json:"dates"`
}

// Title is one entry of the titles list; some entries carry only
// subtitle variants and an empty Title.
type Title struct {
	Title string `json:"title"`
}

// Types carries the registry's resource classification.
type Types struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
}

// Container describes the hosting venue. DataCite keeps volume and
// page bounds here rather than on the work itself.
type Container struct {
	Title     string `json:"title"`
	Volume    string `json:"volume"`
	FirstPage string `json:"firstPage"`
	LastPage  string `json:"lastPage"`
}

// Creator is one entry of the creators list. Individuals carry
// GivenName and FamilyName; consortium attributions only Name.
type Creator struct {
	Name            string           `json:"name"`
	GivenName       string           `json:"givenName"`
	FamilyName      string           `json:"familyName"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers"`
}

// NameIdentifier is a scheme-qualified identifier attached to a
// creator, e.g. an ORCID.
type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
}

// DateEntry is one entry of the dates list.
type DateEntry struct {
	Date     string `json:"date"`
	DateType string `json:"dateType"`
}
