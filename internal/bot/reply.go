package bot

import (
	"encoding/json"
	"fmt"
)

// ReplyText es el texto primario del responder: una cadena simple o una
// lista ordenada de líneas. La forma se decide una sola vez al decodificar;
// aguas abajo solo el controlador la normaliza.
type ReplyText struct {
	Value  string
	List   []string
	IsList bool
}

// UnmarshalJSON acepta cadena, lista de cadenas, o cualquier otro valor
// coercionado a su representación de una línea.
func (t *ReplyText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		t.List = list
		t.IsList = true
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.Value = fmt.Sprint(v)
	return nil
}

// Empty informa si el payload no trajo texto alguno.
func (t ReplyText) Empty() bool {
	if t.IsList {
		return len(t.List) == 0
	}
	return t.Value == ""
}

// Reply es el payload estructurado que devuelve el responder remoto.
type Reply struct {
	Text       ReplyText
	Sources    []string
	Confidence *float64
}
