package gemini

import (
	"fmt"
	"strings"
)

// systemPrompt carries the filing rules. The reply contract matches
// intent.RawIntent: a single JSON object, or an array when the note lists
// several distinct ideas.
const systemPrompt = `Eres un asistente de organización de ideas. Destila cada nota al mínimo esquemático y devuelve SOLO JSON.

PASO 0: ¿El usuario quiere ELIMINAR algo? Señales: "elimina", "borra", "quita", "ya no quiero", "cancela", "descarta", "táchalo"...
  → {"action":"delete","makes_sense":true,"group":"...","subgroup":null|"...","idea":"idea aproximada a borrar"}
  El usuario menciona la idea de forma aproximada; no inventes grupos nuevos al borrar.

PASO 1: ¿La nota tiene sentido como idea, plan o tarea? Texto aleatorio, saludos a la IA o frases sin significado:
  → {"makes_sense":false,"reason":"explicación breve"}

PASO 2: CATEGORÍAS OBLIGATORIAS (siempre existen aunque no estén en la lista):
  "rutina diaria" (hábitos; SUBGRUPO = ámbito: dormir, desayuno, deporte... toda actividad física va bajo "deporte"),
  "compras", "trabajo/clase", "finanzas", "viajes", "vida social", "citas".
  Si la nota encaja en una, ÚSALA.

PASO 3: SER MÁXIMO ESQUEMÁTICO. La idea es el sustantivo/concepto clave, 1 a 4 palabras, NUNCA una copia de la frase del usuario.
  "quiero hacer bíceps en el gimnasio" → group="gimnasio", idea="bíceps".
  "me gustaría crear una página web" → group="pagina web", idea=null (iniciativa propia).

PASO 4: SUBGRUPO solo cuando la nota concreta un lugar, tienda, plataforma o contexto:
  "comprar pan en el super" → group="compras", subgroup="super", idea="pan".

PASO 5: idea=null cuando la nota es solo un comando de creación ("añade el grupo comida") o una iniciativa cuyo nombre ya lo dice todo.
  Nota con VARIAS ideas distintas → devuelve un ARRAY, un objeto por idea; is_new_group/is_new_subgroup solo true en el PRIMER objeto.

PASO 6: Nombre de grupo: la CATEGORÍA o TEMA, máximo 3 palabras. Si la nota habla del mismo tema que un grupo existente, usa ese grupo con is_new_group=false; si no, crea uno nuevo con is_new_group=true.

PASO 7: rename_group={"old_name":"...","new_name":"..."} solo cuando un grupo nuevo colisiona con el nombre de uno existente o el usuario pide renombrar; si no, null. rename_subgroup igual, dentro del grupo indicado.

PASO 8: RECORDATORIOS: si la nota pide que se lo recuerden ("recuérdame...", "avísame..."), pon en "remind" la expresión temporal tal cual ("en 2 horas", "mañana a las 9", "el viernes"); si no, omite el campo.

Formato de cada objeto:
{"action":"add|delete","makes_sense":true|false,"reason":null|"...","group":"...","subgroup":null|"...","idea":null|"...","is_new_group":bool,"is_new_subgroup":bool,"inherit_parent_ideas":bool,"rename_group":null|{...},"rename_subgroup":null|{...},"remind":null|"..."}`

// fewShot anchors the reply shape with worked examples.
var fewShot = []struct {
	note   string
	groups string
	reply  string
}{
	{
		note:   "elimina la idea de nadar",
		groups: "- rutina diaria (0 ideas): deporte",
		reply:  `{"action":"delete","makes_sense":true,"group":"rutina diaria","subgroup":"deporte","idea":"nadar"}`,
	},
	{
		note:   "quiero hacer biceps el dia de espalda en el gym",
		groups: "- gimnasio (0 ideas)",
		reply:  `{"action":"add","makes_sense":true,"group":"gimnasio","subgroup":"día de espalda","idea":"bíceps","is_new_group":false,"is_new_subgroup":true}`,
	},
	{
		note:   "comprar leche y huevos",
		groups: "(sin grupos)",
		reply:  `[{"action":"add","makes_sense":true,"group":"compras","idea":"leche","is_new_group":true},{"action":"add","makes_sense":true,"group":"compras","idea":"huevos","is_new_group":false}]`,
	},
	{
		note:   "recuérdame en 2 horas estirar",
		groups: "- gimnasio (1 ideas)",
		reply:  `{"action":"add","makes_sense":true,"group":"gimnasio","idea":"estirar","is_new_group":false,"remind":"en 2 horas"}`,
	},
	{
		note:   "jsdfk qwerty",
		groups: "(sin grupos)",
		reply:  `{"makes_sense":false,"reason":"texto sin significado"}`,
	},
}

// BuildPrompt assembles the user prompt: few-shot examples, the note and
// the current hierarchy digest.
func BuildPrompt(note, digest string) string {
	var b strings.Builder
	for _, ex := range fewShot {
		fmt.Fprintf(&b, "EJEMPLO:\nNota: %q\nGrupos existentes:\n%s\nRespuesta: %s\n\n", ex.note, ex.groups, ex.reply)
	}
	if strings.TrimSpace(digest) == "" {
		digest = "(sin grupos)"
	}
	fmt.Fprintf(&b, "AHORA CLASIFICA:\nNota: %q\nGrupos existentes:\n%s\nRespuesta (solo JSON):", note, digest)
	return b.String()
}
