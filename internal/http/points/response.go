package points

import (
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
)

type materialResponse struct {
	Kind      material.Kind `json:"kind"`
	Kilograms float64       `json:"kilograms"`
	Points    float64       `json:"points"`
}

type rewardResponse struct {
	Value  float64 `json:"value"`
	Points float64 `json:"points"`
}

type transactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Kind        points.TransactionKind `json:"kind"`
	Points      float64                `json:"points"`
	Description string                 `json:"description"`
	Materials   []materialResponse     `json:"materials,omitempty"`
	Reward      *rewardResponse        `json:"reward,omitempty"`
}

type tierResponse struct {
	Points float64 `json:"points"`
	Value  float64 `json:"value"`
}

func toHistoryResponse(history []points.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(history))

	for i, tx := range history {
		r := transactionResponse{
			ID:          tx.ID,
			CreatedAt:   tx.CreatedAt,
			Kind:        tx.Kind,
			Points:      tx.Points,
			Description: tx.Description,
		}

		for _, m := range tx.Materials {
			r.Materials = append(r.Materials, materialResponse(m))
		}

		if tx.Reward != nil {
			r.Reward = &rewardResponse{Value: tx.Reward.Value, Points: tx.Reward.Points}
		}

		resp[i] = r
	}

	return resp
}

func toTiersResponse(tiers points.TierTable) []tierResponse {
	resp := make([]tierResponse, len(tiers))
	for i, t := range tiers {
		resp[i] = tierResponse(t)
	}

	return resp
}
