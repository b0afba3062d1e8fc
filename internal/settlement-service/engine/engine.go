// Package engine calcula o plano de pagamento de uma liquidação pari-mutuel.
// Função pura: sem I/O, determinística, uma instrução por aposta de entrada.
package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
)

// ErrNoWagers indica pool vazio. O orquestrador valida antes; fica aqui
// como proteção para chamadas diretas.
var ErrNoWagers = errors.New("no wagers to settle")

// PayoutInstruction é o crédito a aplicar na carteira de um usuário.
// Em cenários de estorno, Credit é o valor original da aposta e Refund=true.
// Em distribuição proporcional, Credit é o ganho líquido vindo do pool
// perdedor (a aposta original nunca foi debitada de novo, então não é
// re-creditada aqui).
type PayoutInstruction struct {
	WagerID string
	UserID  string
	Credit  decimal.Decimal
	Refund  bool
}

// ComputePayouts decide entre estorno e distribuição proporcional e calcula
// o crédito de cada aposta, na seguinte ordem de precedência:
//
//  1. aposta única: estorno integral, independente do lado escolhido
//  2. nenhum vencedor: estorno de todas (não há pra quem redistribuir)
//  3. todos vencedores: estorno de todas (pool perdedor vazio é degenerado)
//  4. resultado misto: vencedor w recebe (w.Amount / poolVencedor) * poolPerdedor
//
// Aritmética em decimal de ponto fixo; cada cota é arredondada half-even
// (bankers) para 2 casas e o resíduo do arredondamento é somado à maior
// aposta vencedora, de forma que a soma dos créditos feche exatamente o
// pool perdedor.
func ComputePayouts(wagers []repo.Wager, winner repo.Side) ([]PayoutInstruction, error) {
	if len(wagers) == 0 {
		return nil, ErrNoWagers
	}

	totalPool := decimal.Zero
	winningPool := decimal.Zero
	winners := 0
	for _, w := range wagers {
		totalPool = totalPool.Add(w.Amount)
		if w.SideChoice == winner {
			winningPool = winningPool.Add(w.Amount)
			winners++
		}
	}

	// Cenários 1-3: estorno do valor apostado
	if len(wagers) == 1 || winners == 0 || winners == len(wagers) {
		out := make([]PayoutInstruction, 0, len(wagers))
		for _, w := range wagers {
			out = append(out, PayoutInstruction{
				WagerID: w.ID,
				UserID:  w.UserID,
				Credit:  w.Amount,
				Refund:  true,
			})
		}
		return out, nil
	}

	// Cenário 4: distribuição proporcional do pool perdedor
	losingPool := totalPool.Sub(winningPool)

	out := make([]PayoutInstruction, 0, len(wagers))
	distributed := decimal.Zero
	largestIdx := -1
	largestAmount := decimal.Zero

	for _, w := range wagers {
		if w.SideChoice != winner {
			out = append(out, PayoutInstruction{WagerID: w.ID, UserID: w.UserID, Credit: decimal.Zero})
			continue
		}

		share := w.Amount.Mul(losingPool).Div(winningPool).RoundBank(2)
		out = append(out, PayoutInstruction{WagerID: w.ID, UserID: w.UserID, Credit: share})
		distributed = distributed.Add(share)

		if largestIdx < 0 || w.Amount.GreaterThan(largestAmount) {
			largestIdx = len(out) - 1
			largestAmount = w.Amount
		}
	}

	// Resíduo de arredondamento vai pra maior aposta vencedora
	if residual := losingPool.Sub(distributed); !residual.IsZero() {
		out[largestIdx].Credit = out[largestIdx].Credit.Add(residual)
	}

	return out, nil
}
