package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/shopspring/decimal"
)

// microScale converts between ALGO and microAlgos.
const microScale = 6

const onboardingNote = "CareBox Pack - Onboarding Reward"

// PaymentGateway pays rewards out of the funded wallet.
type PaymentGateway struct {
	node      Node
	account   crypto.Account
	configErr error
	rounds    uint64
}

// NewPaymentGateway recovers the funded account from its mnemonic. A missing or
// invalid mnemonic does not fail construction; every payout reports it instead.
func NewPaymentGateway(node Node, walletMnemonic string, rounds uint64) *PaymentGateway {
	g := &PaymentGateway{node: node, rounds: rounds}
	walletMnemonic = strings.TrimSpace(walletMnemonic)
	if walletMnemonic == "" {
		g.configErr = fmt.Errorf("%w: FUNDED_WALLET_MNEMONIC not configured", domain.ErrGatewayConfiguration)
		return g
	}
	sk, err := mnemonic.ToPrivateKey(walletMnemonic)
	if err != nil {
		g.configErr = fmt.Errorf("%w: invalid funded wallet mnemonic: %v", domain.ErrGatewayConfiguration, err)
		return g
	}
	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		g.configErr = fmt.Errorf("%w: %v", domain.ErrGatewayConfiguration, err)
		return g
	}
	g.account = account
	return g
}

// FundedAddress is empty when the gateway is not configured.
func (g *PaymentGateway) FundedAddress() string {
	if g.configErr != nil {
		return ""
	}
	return g.account.Address.String()
}

func (g *PaymentGateway) Balance(ctx context.Context) (decimal.Decimal, error) {
	if g.configErr != nil {
		return decimal.Zero, g.configErr
	}
	micro, err := g.node.Balance(ctx, g.account.Address.String())
	if err != nil {
		return decimal.Zero, networkError("account information", err)
	}
	return fromMicroAlgos(micro), nil
}

func (g *PaymentGateway) Payout(ctx context.Context, destinationID string, amount decimal.Decimal) (domain.PayoutReceipt, error) {
	if g.configErr != nil {
		return domain.PayoutReceipt{}, g.configErr
	}
	micro, err := toMicroAlgos(amount)
	if err != nil {
		return domain.PayoutReceipt{}, fmt.Errorf("%w: %v", domain.ErrGatewayConfiguration, err)
	}

	sender := g.account.Address.String()
	balance, err := g.node.Balance(ctx, sender)
	if err != nil {
		return domain.PayoutReceipt{}, networkError("account information", err)
	}
	if balance < micro {
		return domain.PayoutReceipt{}, fmt.Errorf("%w: have %s ALGO, need %s ALGO",
			domain.ErrGatewayInsufficientFunds, fromMicroAlgos(balance), amount)
	}

	params, err := g.node.SuggestedParams(ctx)
	if err != nil {
		return domain.PayoutReceipt{}, networkError("suggested params", err)
	}
	txn, err := transaction.MakePaymentTxn(sender, destinationID, micro, []byte(onboardingNote), "", params)
	if err != nil {
		return domain.PayoutReceipt{}, fmt.Errorf("%w: build payment: %v", domain.ErrGatewayConfiguration, err)
	}
	txID, signed, err := crypto.SignTransaction(g.account.PrivateKey, txn)
	if err != nil {
		return domain.PayoutReceipt{}, fmt.Errorf("%w: sign payment: %v", domain.ErrGatewayConfiguration, err)
	}

	if _, err := g.node.Submit(ctx, signed); err != nil {
		return domain.PayoutReceipt{}, networkError("send payment", err)
	}
	confirmed, err := g.node.WaitForConfirmation(ctx, txID, g.rounds)
	if err != nil {
		return domain.PayoutReceipt{}, networkError("confirm payment "+txID, err)
	}

	return domain.PayoutReceipt{ReferenceID: txID, Round: confirmed.ConfirmedRound}, nil
}

func networkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrGatewayNetwork, op, err)
}

func toMicroAlgos(amount decimal.Decimal) (uint64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return uint64(amount.Shift(microScale).IntPart()), nil
}

func fromMicroAlgos(micro uint64) decimal.Decimal {
	return decimal.New(int64(micro), -microScale)
}
