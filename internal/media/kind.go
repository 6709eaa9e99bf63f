package media

// Kind identifies the catalog family a candidate belongs to.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	KindBook  Kind = "book"
)

// Kinds lists every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindMovie, KindTV, KindBook}
}

// ParseKind matches value against the supported kinds. Matching is exact:
// case variants, padding and synonyms such as "film" are rejected.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindMovie:
		return KindMovie, true
	case KindTV:
		return KindTV, true
	case KindBook:
		return KindBook, true
	default:
		return "", false
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindTV, KindBook:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// SearchHint returns the disambiguation word appended to encyclopedic searches.
func (k Kind) SearchHint() string {
	switch k {
	case KindMovie:
		return "film"
	case KindTV:
		return "television series"
	case KindBook:
		return "book"
	default:
		return ""
	}
}
