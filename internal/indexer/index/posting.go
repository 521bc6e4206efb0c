package index

// Posting is one document's entry in a word's inverted-index row.
type Posting struct {
	DocID    int     `json:"doc_id"`
	TermFreq float64 `json:"tf"`
}

type PostingList []Posting

