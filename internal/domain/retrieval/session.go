package retrieval

// SubqueryResult records the outcome of one subquery's retrieval call.
// A failed call is local to its subquery: Failed is set and Documents is
// empty, and the rest of the hop proceeds.
type SubqueryResult struct {
	Subquery  string
	Aspect    string
	Documents []Document
	Failed    bool
	Error     string
}

// HopRecord records one retrieval hop for observability.
type HopRecord struct {
	Hop        int
	Subqueries []SubqueryResult
	Continued  bool
	Reasoning  string
}

// Documents flattens the successfully retrieved documents of a hop.
func (h *HopRecord) Documents() []Document {
	var docs []Document
	for i := range h.Subqueries {
		docs = append(docs, h.Subqueries[i].Documents...)
	}
	return docs
}
