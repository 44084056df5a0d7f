package services

import "errors"

// Code identifica de forma estável o motivo de uma falha do ledger.
type Code string

const (
	CodeUnauthorized          Code = "Unauthorized"
	CodeInvalidAttributes     Code = "InvalidAttributes"
	CodeInvalidPrice          Code = "InvalidPrice"
	CodeInvalidAmount         Code = "InvalidAmount"
	CodeInvalidRuling         Code = "InvalidRuling"
	CodeInvalidRole           Code = "InvalidRole"
	CodeNotOwner              Code = "NotOwner"
	CodeNotListed             Code = "NotListed"
	CodeTokenHeld             Code = "TokenHeld"
	CodeTokenNotFound         Code = "TokenNotFound"
	CodeDisputeNotFound       Code = "DisputeNotFound"
	CodeNoSale                Code = "NoSale"
	CodePaymentMismatch       Code = "PaymentMismatch"
	CodeSelfPurchase          Code = "SelfPurchase"
	CodeAlreadyRuled          Code = "AlreadyRuled"
	CodeNothingToWithdraw     Code = "NothingToWithdraw"
	CodeReentrancyRejected    Code = "ReentrancyRejected"
	CodeInvariantViolation    Code = "InvariantViolation"
	CodeArbitratorUnavailable Code = "ArbitratorUnavailable"
)

// Error é uma falha discriminada do ledger. Toda operação que retorna Error
// não deixou nenhum efeito no estado nem no EventLog.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUnauthorized          = &Error{CodeUnauthorized, "não autorizado"}
	ErrInvalidAttributes     = &Error{CodeInvalidAttributes, "atributos do token inválidos"}
	ErrInvalidPrice          = &Error{CodeInvalidPrice, "preço inválido"}
	ErrInvalidAmount         = &Error{CodeInvalidAmount, "valor inválido"}
	ErrInvalidRuling         = &Error{CodeInvalidRuling, "decisão inválida"}
	ErrInvalidRole           = &Error{CodeInvalidRole, "papel desconhecido"}
	ErrNotOwner              = &Error{CodeNotOwner, "conta não é a proprietária do token"}
	ErrNotListed             = &Error{CodeNotListed, "token não está à venda"}
	ErrTokenHeld             = &Error{CodeTokenHeld, "token retido por disputa"}
	ErrTokenNotFound         = &Error{CodeTokenNotFound, "token não encontrado"}
	ErrDisputeNotFound       = &Error{CodeDisputeNotFound, "disputa não encontrada"}
	ErrNoSale                = &Error{CodeNoSale, "nenhuma venda passível de disputa"}
	ErrPaymentMismatch       = &Error{CodePaymentMismatch, "pagamento diferente do preço pedido"}
	ErrSelfPurchase          = &Error{CodeSelfPurchase, "vendedor não pode comprar o próprio token"}
	ErrAlreadyRuled          = &Error{CodeAlreadyRuled, "disputa já decidida"}
	ErrNothingToWithdraw     = &Error{CodeNothingToWithdraw, "nenhum saldo para sacar"}
	ErrReentrancyRejected    = &Error{CodeReentrancyRejected, "chamada reentrante rejeitada"}
	ErrInvariantViolation    = &Error{CodeInvariantViolation, "operação violaria um invariante do ledger"}
	ErrArbitratorUnavailable = &Error{CodeArbitratorUnavailable, "árbitro indisponível"}
)

// CodeOf extrai o Code de err, ou "" se err não vier do ledger.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
