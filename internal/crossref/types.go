package crossref

// Work is the subset of the Crossref work schema the normalizer reads.
type Work struct {
	DOI            string        `json:"DOI"`
	Type           string        `json:"type"`
	Subtype        string        `json:"subtype"`
	Title          []string      `json:"title"`
	ContainerTitle []string      `json:"container-title"`
	GroupTitle     string        `json:"group-title"`
	Publisher      string        `json:"publisher"`
	Institution    []Institution `json:"institution"`
	Volume         string        `json:"volume"`
	Page           string        `json:"page"`
	Author         []Contributor `json:"author"`
	Issued         DateParts     `json:"issued"`
}

// Institution is a hosting institution listed on a work, used for
// preprint venue inference.
type Institution struct {
	Name string `json:"name"`
}

// Contributor is one entry of a work's author list. Family and Given
// identify a person; Name alone is used for consortium attributions.
type Contributor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Name   string `json:"name"`
	ORCID  string `json:"ORCID"`
}

// DateParts holds Crossref's nested date representation. The inner
// triples are year, month, day, any of which may be null.
type DateParts struct {
	DateParts [][]*int `json:"date-parts"`
}
