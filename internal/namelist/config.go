package namelist

import "strings"

// Entry — пара key = value внутри секции.
type Entry struct {
	Key   string
	Value Value
}

// E — короткий конструктор Entry.
func E(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// Section — именованная группа &name ... /.
type Section struct {
	Name    string
	Entries []Entry
}

// S — короткий конструктор Section.
func S(name string, entries ...Entry) Section {
	return Section{Name: name, Entries: entries}
}

// Config — неизменяемый упорядоченный набор секций namelist.
//
// Порядок секций и ключей сохраняется при записи. Все методы,
// меняющие конфигурацию, возвращают новое значение и не трогают
// получателя, поэтому один Config можно безопасно разделять между
// стадиями.
type Config struct {
	sections []Section
}

// New создаёт Config из секций. Входные слайсы копируются.
func New(sections ...Section) Config {
	c := Config{sections: make([]Section, len(sections))}
	for i, s := range sections {
		c.sections[i] = Section{
			Name:    s.Name,
			Entries: append([]Entry(nil), s.Entries...),
		}
	}
	return c
}

// Sections возвращает имена секций по порядку.
func (c Config) Sections() []string {
	names := make([]string, len(c.sections))
	for i, s := range c.sections {
		names[i] = s.Name
	}
	return names
}

// Keys возвращает ключи секции по порядку.
func (c Config) Keys(section string) []string {
	idx := c.sectionIndex(section)
	if idx < 0 {
		return nil
	}
	entries := c.sections[idx].Entries
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Get возвращает значение ключа в секции.
func (c Config) Get(section, key string) (Value, bool) {
	si := c.sectionIndex(section)
	if si < 0 {
		return Value{}, false
	}
	ki := entryIndex(c.sections[si].Entries, key)
	if ki < 0 {
		return Value{}, false
	}
	return c.sections[si].Entries[ki].Value, true
}

// Has возвращает true, если ключ задан в секции.
func (c Config) Has(section, key string) bool {
	_, ok := c.Get(section, key)
	return ok
}

// With возвращает копию, в которой section.key = v.
// Существующий ключ заменяется на месте, новый добавляется в конец секции,
// отсутствующая секция добавляется в конец конфигурации.
func (c Config) With(section, key string, v Value) Config {
	out := c.clone()

	si := out.sectionIndex(section)
	if si < 0 {
		out.sections = append(out.sections, Section{Name: section})
		si = len(out.sections) - 1
	}

	entries := out.sections[si].Entries
	if ki := entryIndex(entries, key); ki >= 0 {
		entries[ki].Value = v
	} else {
		out.sections[si].Entries = append(entries, Entry{Key: key, Value: v})
	}
	return out
}

// Map возвращает section → key → значение (см. Value.Interface).
func (c Config) Map() map[string]map[string]any {
	m := make(map[string]map[string]any, len(c.sections))
	for _, s := range c.sections {
		sec := make(map[string]any, len(s.Entries))
		for _, e := range s.Entries {
			sec[e.Key] = e.Value.Interface()
		}
		m[s.Name] = sec
	}
	return m
}

// Render записывает конфигурацию в синтаксисе фортрановского namelist.
//
//	&control
//	  calculation = 'vc-relax'
//	  nstep = 100
//	/
func (c Config) Render() string {
	var b strings.Builder
	for _, s := range c.sections {
		b.WriteString("&")
		b.WriteString(s.Name)
		b.WriteString("\n")
		for _, e := range s.Entries {
			b.WriteString("  ")
			b.WriteString(e.Key)
			b.WriteString(" = ")
			b.WriteString(e.Value.String())
			b.WriteString("\n")
		}
		b.WriteString("/\n")
	}
	return b.String()
}

// String реализует fmt.Stringer.
func (c Config) String() string {
	return c.Render()
}

func (c Config) clone() Config {
	return New(c.sections...)
}

func (c Config) sectionIndex(name string) int {
	for i, s := range c.sections {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func entryIndex(entries []Entry, key string) int {
	for i, e := range entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}
