package models

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account identifica um participante do ledger pela sua chave pública Solana.
type Account = solana.PublicKey

// ParseAccount converte um endereço base58 em Account.
func ParseAccount(s string) (Account, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return Account{}, fmt.Errorf("endereço de conta inválido %q: %w", s, err)
	}
	if pk.IsZero() {
		return Account{}, fmt.Errorf("endereço de conta vazio")
	}
	return pk, nil
}

// Role é uma capacidade concedida a uma conta.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleProvider Role = "PROVIDER"
	RoleConsumer Role = "CONSUMER"
)

// Valid informa se o papel é um dos papéis conhecidos.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleConsumer:
		return true
	}
	return false
}
