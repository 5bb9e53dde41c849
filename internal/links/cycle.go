package links

// WouldCycle reports whether pointing questionID at stemID closes a loop in
// the stem chain. The walk starts at stemID and follows each node's own stem
// reference. Reaching questionID, coming back to stemID, or revisiting any
// node already walked counts as a cycle. It does not rely on stems being
// free of stem references, because hand-edited files break that rule.
func (s *Store) WouldCycle(questionID, stemID string) bool {
	return walkStemChain(s.stemOf, questionID, stemID)
}

// WouldCycle is Store.WouldCycle over a record snapshot.
func WouldCycle(records map[string]Record, questionID, stemID string) bool {
	return walkStemChain(snapshotStemOf(records), questionID, stemID)
}

// OnCycle reports whether following id's stem chain leads back to id.
// Unlike WouldCycle it is false for a record whose chain merely runs into a
// loop elsewhere.
func OnCycle(records map[string]Record, id string) bool {
	return chainReturns(snapshotStemOf(records), id)
}

func (s *Store) stemOf(id string) string {
	if rec, ok := s.questions[id]; ok {
		return rec.StemID()
	}
	return ""
}

func snapshotStemOf(records map[string]Record) func(string) string {
	return func(id string) string {
		return records[id].StemID()
	}
}

func walkStemChain(next func(string) string, questionID, stemID string) bool {
	if questionID == stemID {
		return true
	}
	seen := map[string]bool{stemID: true}
	cur := stemID
	for {
		n := next(cur)
		if n == "" {
			return false
		}
		if n == questionID || seen[n] {
			return true
		}
		seen[n] = true
		cur = n
	}
}

func chainReturns(next func(string) string, id string) bool {
	seen := map[string]bool{}
	cur := id
	for {
		n := next(cur)
		if n == "" {
			return false
		}
		if n == id {
			return true
		}
		if seen[n] {
			return false
		}
		seen[n] = true
		cur = n
	}
}
