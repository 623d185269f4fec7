package chain

import (
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/azizikri/streak-rewards/internal/domain"
)

// AddressValidator accepts well-formed Algorand addresses (base32 with checksum).
type AddressValidator struct{}

func (AddressValidator) Validate(address string) error {
	if _, err := types.DecodeAddress(address); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecipient, err)
	}
	return nil
}
