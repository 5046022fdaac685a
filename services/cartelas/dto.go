package cartelas

import "github.com/nvbf/bingo-hall/repos/store"

// CartelaRequest is the body of create and update calls. Number is ignored on
// update and optional on create.
type CartelaRequest struct {
	Number int      `json:"number"`
	B      []string `json:"B"`
	I      []string `json:"I"`
	N      []string `json:"N"`
	G      []string `json:"G"`
	O      []string `json:"O"`
}

func (r CartelaRequest) cartela() store.Cartela {
	return store.Cartela{Number: r.Number, B: r.B, I: r.I, N: r.N, G: r.G, O: r.O}
}

type GenerateRequest struct {
	Count int `json:"count"`
}
