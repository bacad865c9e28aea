package domain

// Digest groups one run's records into the delivery categories: summary
// dispositions first (dismissals, then affirmances), then patent cases
// (precedential before non-precedential), then everything else. A record
// with a terminal disposition never appears in the patent/non-patent
// buckets, whatever its patent flag says.
type Digest struct {
	Dismissals         []CaseRecord
	Affirmances        []CaseRecord
	PatentPrecedential []CaseRecord
	PatentOther        []CaseRecord
	NonPatent          []CaseRecord
}

// BuildDigest routes records into digest buckets.
func BuildDigest(records []CaseRecord) Digest {
	var d Digest
	for _, rec := range records {
		switch {
		case rec.SummaryDisposition():
			if rec.Disposition == DispositionRule36 {
				d.Affirmances = append(d.Affirmances, rec)
			} else {
				d.Dismissals = append(d.Dismissals, rec)
			}
		case rec.Classification.IsPatentCase:
			if rec.Meta.IsPrecedential {
				d.PatentPrecedential = append(d.PatentPrecedential, rec)
			} else {
				d.PatentOther = append(d.PatentOther, rec)
			}
		default:
			d.NonPatent = append(d.NonPatent, rec)
		}
	}
	return d
}

// Empty reports whether the digest holds no records at all.
func (d Digest) Empty() bool {
	return len(d.Dismissals) == 0 && len(d.Affirmances) == 0 &&
		len(d.PatentPrecedential) == 0 && len(d.PatentOther) == 0 &&
		len(d.NonPatent) == 0
}
