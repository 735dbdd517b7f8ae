package stringset

type StringSet map[string]struct{}

func New(ss ...string) StringSet {
	set := make(StringSet, len(ss))
	for _, s := range ss {
		set.Add(s)
	}
	return set
}

func (ss StringSet) Add(s string) StringSet {
	ss[s] = struct{}{}
	return ss
}

func (ss StringSet) Contains(s string) bool {
	_, ok := ss[s]
	return ok
}

func (ss StringSet) Delete(s string) {
	delete(ss, s)
}

func (ss StringSet) Values() []string {
	vs := make([]string, 0, len(ss))
	for s := range ss {
		vs = append(vs, s)
	}
	return vs
}
