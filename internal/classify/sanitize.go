package classify

import (
	"regexp"
	"strings"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/internal/resolve"
)

// Starter categories that always exist conceptually, whether or not the
// hierarchy holds them yet.
var PredefinedCategories = []string{
	"rutina diaria", "compras", "trabajo/clase", "finanzas",
	"viajes", "vida social", "citas",
}

// deleteKeywords are phrasings that almost always mean the user wants
// something removed, even when the backend classified the note as an add.
var deleteKeywords = []string{
	"elimina ", "eliminar ", "elimina la", "eliminar la",
	"borra ", "borrar ", "borra la", "borrar la",
	"quita ", "quitar ", "quita la", "quitar la",
	"ya no quiero", "descarta ", "descartar ",
	"bórralo", "bórrala", "elimínalo", "elimínala",
	"ya no necesito", "tacha ", "tachar ",
}

// renameKeywords mark an explicit rename request; without one, a rename
// attached to an existing group is treated as backend noise.
var renameKeywords = []string{
	"renombra", "renombrar", "cambia el nombre", "cambiar el nombre",
	"cámbiale el nombre", "rename",
}

// categoryKeywords map note phrasings to a starter category. Order
// matters: the first hit wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"rutina diaria", []string{
		"dormir", "despertar", "levantarme", "levantarse", "acostarme",
		"acostarse", "desayunar", "desayuno", "almorzar", "almuerzo",
		"comer a las", "merendar", "merienda", "cenar", "cena",
		"ducharme", "ducharse", "meditar", "rutina", "hábito", "horario de",
		"hacer deporte", "deporte", "nadar", "natación", "natacion",
		"correr", "running", "yoga", "ciclismo", "bici ", "bicicleta",
		"entrenar", "entrenamiento", "pilates", "boxeo", "gimnasio", "gym",
	}},
	{"compras", []string{"comprar ", "necesito comprar", "tengo que comprar"}},
	{"trabajo/clase", []string{
		"examen", "entrega", "trabajo de clase", "reunión de trabajo",
		"presentación del trabajo",
	}},
	{"finanzas", []string{
		"pagar el recibo", "pagar la factura", "pagar impuesto",
		"recibo de", "factura de", "mi sueldo", "mis ahorros",
	}},
	{"viajes", []string{
		"viaje a ", "viajar a ", "vuelo a ", "reservar hotel",
		"billete de avión", "de vacaciones",
	}},
	{"vida social", []string{
		"quedar con ", "quedada con ", "cena con ", "comida con ",
		"fiesta de ", "cumpleaños de ",
	}},
	{"citas", []string{
		"cita con el ", "cita médica", "cita con mi ", "ir al dentista",
		"ir al médico", "cita con el dentista", "cita con el médico",
	}},
}

// routineActivities map an activity wording to its routine subgroup; all
// physical activities collapse into "deporte". First hit wins.
var routineActivities = []struct{ keyword, subgroup string }{
	{"dormir", "dormir"},
	{"acostarme", "dormir"},
	{"acostarse", "dormir"},
	{"levantarme", "levantarse"},
	{"levantarse", "levantarse"},
	{"despertar", "levantarse"},
	{"despertarme", "levantarse"},
	{"desayunar", "desayuno"},
	{"desayuno", "desayuno"},
	{"almorzar", "almuerzo"},
	{"almuerzo", "almuerzo"},
	{"comer", "comer"},
	{"merendar", "merienda"},
	{"merienda", "merienda"},
	{"cenar", "cena"},
	{"cena", "cena"},
	{"ducharme", "ducha"},
	{"ducharse", "ducha"},
	{"ducha", "ducha"},
	{"meditar", "meditación"},
	{"meditación", "meditación"},
	{"deporte", "deporte"},
	{"hacer deporte", "deporte"},
	{"nadar", "deporte"},
	{"natación", "deporte"},
	{"natacion", "deporte"},
	{"correr", "deporte"},
	{"running", "deporte"},
	{"yoga", "deporte"},
	{"ciclismo", "deporte"},
	{"bicicleta", "deporte"},
	{"pilates", "deporte"},
	{"boxeo", "deporte"},
	{"ejercicio", "deporte"},
	{"entrenar", "deporte"},
	{"entrenamiento", "deporte"},
	{"gimnasio", "deporte"},
	{"gym", "deporte"},
	{"estudiar", "estudio"},
}

// fillerRe strips the lead-in phrases users put before the actual idea.
var fillerRe = regexp.MustCompile(`^(?i)(me gustar[ií]a\s+(que\s+)?|quisiera\s+|quiero\s+que\s+|quiero\s+|tengo\s+que\s+|tengo\s+ganas\s+de\s+|voy\s+a\s+|me\s+apetece\s+|tendr[ií]a\s+que\s+|deber[ií]a\s+|me\s+conviene\s+|necesito\s+|necesitar[ií]a\s+|pienso\s+en\s+|estoy\s+pensando\s+en\s+|pienso\s+|me\s+interesar[ií]a\s+|me\s+mola\s+|me\s+apetecer[ií]a\s+|planifico\s+|planeo\s+|plan\s+de\s+)`)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true,
	"una": true, "unos": true, "unas": true, "de": true, "del": true,
	"al": true, "que": true, "en": true, "y": true, "a": true, "o": true,
	"con": true, "por": true, "para": true, "me": true, "te": true,
	"se": true, "le": true, "lo": true, "su": true, "si": true,
	"ya": true, "no": true, "como": true, "pero": true, "este": true,
	"esta": true, "ese": true, "esa": true, "aquel": true, "mi": true,
	"tu": true, "nos": true, "les": true,
}

// creationPhrases discard an idea that is really a container-management
// command; the containers themselves are still created via the flags.
var creationPhrases = []string{
	"añade", "añadir", "agrega", "agregar", "crea", "crear",
	"abre", "abrir", "nuevo grupo", "nueva categoria",
	"nueva categoría", "el grupo", "un grupo",
	"el subgrupo", "un subgrupo", "nuevo subgrupo", "nueva sección",
	"nueva seccion", "subgrupo de",
}

var containerWords = map[string]bool{
	"grupo": true, "subgrupo": true, "categoría": true,
	"categoria": true, "sección": true, "seccion": true,
}

// Sanitize runs the safety nets over a decoded reply. The note text is the
// user's original wording; groups is the snapshot the digest was built
// from. In multi-intent replies only the first element keeps new-entity
// flags, inheritance and renames; the rest reuse what the first set up.
func Sanitize(raws []intent.RawIntent, note string, groups []hierarchy.Group) []intent.RawIntent {
	out := make([]intent.RawIntent, 0, len(raws))
	for i, raw := range raws {
		s := sanitizeOne(raw, note, groups)
		if i > 0 {
			s.IsNewGroup = false
			s.IsNewSubgroup = false
			s.InheritParentIdeas = false
			s.RenameGroup = nil
			s.RenameSubgroup = nil
		}
		out = append(out, s)
	}
	return out
}

func sanitizeOne(raw intent.RawIntent, note string, groups []hierarchy.Group) intent.RawIntent {
	if !raw.Sensible() {
		return raw
	}

	raw.Action = strings.ToLower(strings.TrimSpace(raw.Action))
	if raw.Action == "" {
		raw.Action = intent.ActionAdd
	}
	if raw.Action != intent.ActionDelete && HasDeleteIntent(note) {
		raw.Action = intent.ActionDelete
	}
	if raw.Action == intent.ActionDelete {
		raw.IsNewGroup = false
		raw.IsNewSubgroup = false
		raw.InheritParentIdeas = false
		raw.RenameGroup = nil
		raw.RenameSubgroup = nil
		return raw
	}

	// A stored group named verbatim in the note beats an invented one.
	mentioned := mentionedGroup(note, groups)
	if raw.IsNewGroup && mentioned != "" {
		raw.Group = mentioned
		raw.IsNewGroup = false
	}

	// The category guess nets hallucinated novel groups only. A group
	// that is predefined, stored, mentioned in the note or echoed from
	// the note's own wording stands.
	if !isPredefined(raw.Group) && mentioned == "" &&
		!groupExists(groups, raw.Group) && !noteNamesGroup(note, raw.Group) {
		if cat := guessCategory(note); cat != "" {
			raw.Group = cat
			raw.IsNewGroup = !groupExists(groups, cat)
			if cat == "rutina diaria" && raw.Subgroup == "" {
				if sub := routineActivity(note); sub != "" {
					raw.Subgroup = sub
					raw.IsNewSubgroup = true
				}
			}
		}
	}

	raw.Idea = dropCommandIdea(TrimIdea(raw.Idea, note))

	if !hasRenameIntent(note) {
		if raw.RenameGroup != nil && !raw.IsNewGroup {
			raw.RenameGroup = nil
		}
		if raw.RenameSubgroup != nil && !raw.IsNewSubgroup {
			raw.RenameSubgroup = nil
		}
	}
	return raw
}

// HasDeleteIntent reports whether the note phrasing asks to remove
// something.
func HasDeleteIntent(note string) bool {
	lower := strings.ToLower(note)
	for _, kw := range deleteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasRenameIntent(note string) bool {
	lower := strings.ToLower(note)
	for _, kw := range renameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mentionedGroup returns the stored display name of the first group whose
// name appears inside the note, comparing normalized text so accents and
// case never hide a mention.
func mentionedGroup(note string, groups []hierarchy.Group) string {
	normNote := resolve.Normalize(note)
	for _, g := range groups {
		if key := resolve.Normalize(g.Name); key != "" && strings.Contains(normNote, key) {
			return g.Name
		}
	}
	return ""
}

// noteNamesGroup reports whether the note itself spells out the chosen
// group name, accent and case aside.
func noteNamesGroup(note, group string) bool {
	key := resolve.Normalize(group)
	return key != "" && strings.Contains(resolve.Normalize(note), key)
}

func groupExists(groups []hierarchy.Group, name string) bool {
	key := resolve.Normalize(name)
	for _, g := range groups {
		if resolve.Normalize(g.Name) == key {
			return true
		}
	}
	return false
}

func isPredefined(group string) bool {
	lower := strings.ToLower(group)
	for _, cat := range PredefinedCategories {
		if lower == cat {
			return true
		}
	}
	return false
}

func guessCategory(note string) string {
	lower := strings.ToLower(note)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return ""
}

func routineActivity(note string) string {
	lower := strings.ToLower(note)
	for _, entry := range routineActivities {
		if strings.Contains(lower, entry.keyword) {
			return entry.subgroup
		}
	}
	return ""
}

// TrimIdea reduces a verbatim idea to its core: filler lead-ins go, and an
// idea that is mostly a copy of the note is cut to its first meaningful
// words. Ideas are capped at five words.
func TrimIdea(idea, note string) string {
	if idea == "" {
		return idea
	}
	trimmed := strings.TrimSpace(fillerRe.ReplaceAllString(idea, ""))
	words := strings.Fields(trimmed)

	if len(words) > 4 && note != "" {
		noteTokens := make(map[string]bool)
		for _, tok := range wordRe.FindAllString(strings.ToLower(note), -1) {
			if !stopWords[tok] {
				noteTokens[tok] = true
			}
		}
		ideaTokens := make([]string, 0, len(words))
		for _, tok := range wordRe.FindAllString(strings.ToLower(trimmed), -1) {
			if !stopWords[tok] {
				ideaTokens = append(ideaTokens, tok)
			}
		}
		if len(noteTokens) > 0 && len(ideaTokens) > 0 {
			common := 0
			for _, tok := range ideaTokens {
				if noteTokens[tok] {
					common++
				}
			}
			if float64(common)/float64(len(ideaTokens)) >= 0.65 {
				kept := make([]string, 0, 4)
				for _, w := range words {
					toks := wordRe.FindAllString(strings.ToLower(w), -1)
					if len(toks) == 0 || stopWords[toks[0]] {
						continue
					}
					kept = append(kept, w)
					if len(kept) == 4 {
						break
					}
				}
				if len(kept) > 0 {
					return strings.Join(kept, " ")
				}
			}
		}
	}

	if len(words) > 5 {
		return strings.Join(words[:5], " ")
	}
	return trimmed
}

// dropCommandIdea empties an idea that is really a creation command or
// starts by naming a container.
func dropCommandIdea(idea string) string {
	if idea == "" {
		return idea
	}
	lower := strings.ToLower(idea)
	for _, kw := range creationPhrases {
		if strings.Contains(lower, kw) {
			return ""
		}
	}
	head := strings.Fields(lower)
	if len(head) > 4 {
		head = head[:4]
	}
	for _, w := range head {
		if containerWords[strings.Trim(w, ".,;:")] {
			return ""
		}
	}
	return idea
}
