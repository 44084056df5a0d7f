package models

import "time"

// EventKind identifica o tipo de transição registrada no EventLog.
type EventKind string

const (
	EventRoleGranted       EventKind = "RoleGranted"
	EventRoleRevoked       EventKind = "RoleRevoked"
	EventTokenCreated      EventKind = "TokenCreated"
	EventTokenListed       EventKind = "TokenListed"
	EventTokenDelisted     EventKind = "TokenDelisted"
	EventTokenPurchased    EventKind = "TokenPurchased"
	EventWithdrawal        EventKind = "Withdrawal"
	EventMetaEvidence      EventKind = "MetaEvidence"
	EventDisputeOpened     EventKind = "DisputeOpened"
	EventEvidenceSubmitted EventKind = "EvidenceSubmitted"
	EventDisputeRuled      EventKind = "DisputeRuled"
)

// Event é um registro imutável de transição de estado, encadeado por hash.
// Os campos opcionais são preenchidos conforme o Kind.
type Event struct {
	Seq       uint64    `json:"seq" cbor:"1,keyasint"`
	Kind      EventKind `json:"kind" cbor:"2,keyasint"`
	Timestamp time.Time `json:"timestamp" cbor:"3,keyasint"`

	TokenID   uint64           `json:"token_id,omitempty" cbor:"4,keyasint,omitempty"`
	DisputeID uint64           `json:"dispute_id,omitempty" cbor:"5,keyasint,omitempty"`
	Account   string           `json:"account,omitempty" cbor:"6,keyasint,omitempty"` // owner, comprador, disputante ou beneficiário
	Role      Role             `json:"role,omitempty" cbor:"7,keyasint,omitempty"`
	Amount    string           `json:"amount,omitempty" cbor:"8,keyasint,omitempty"` // preço ou valor, em string decimal
	Outcome   Ruling           `json:"outcome,omitempty" cbor:"9,keyasint,omitempty"`
	URI       string           `json:"uri,omitempty" cbor:"10,keyasint,omitempty"`
	Attrs     *TokenAttributes `json:"attrs,omitempty" cbor:"11,keyasint,omitempty"`

	PrevHash string `json:"prev_hash" cbor:"12,keyasint"`
	Hash     string `json:"hash" cbor:"-"`
}
