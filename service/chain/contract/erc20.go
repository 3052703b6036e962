package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	baseabi "github.com/unit-xyz/goapi/base/abi"
	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/chain"
)

// Erc20 moves payment tokens on behalf of the market. Transfer sends
// from the operator account, which is where TransferFrom pulls funds
// into.
type Erc20 struct {
	chainService chain.Client
	abi          ethabi.ABI
}

func NewErc20(chainService chain.Client) *Erc20 {
	return &Erc20{
		abi:          baseabi.ERC20TokenABI,
		chainService: chainService,
	}
}

func (e *Erc20) Allowance(ctx bCtx.Ctx, token, owner, spender domain.Address) (*big.Int, error) {
	unpacked, err := e.chainService.Call(ctx, common.HexToAddress(token.ToLowerStr()), e.abi, "allowance",
		common.HexToAddress(owner.ToLowerStr()), common.HexToAddress(spender.ToLowerStr()))
	if err != nil {
		return nil, err
	}
	return unpacked[0].(*big.Int), nil
}

func (e *Erc20) BalanceOf(ctx bCtx.Ctx, token, account domain.Address) (*big.Int, error) {
	unpacked, err := e.chainService.Call(ctx, common.HexToAddress(token.ToLowerStr()), e.abi, "balanceOf",
		common.HexToAddress(account.ToLowerStr()))
	if err != nil {
		return nil, err
	}
	return unpacked[0].(*big.Int), nil
}

func (e *Erc20) Transfer(ctx bCtx.Ctx, token, to domain.Address, amount *big.Int) error {
	return e.chainService.Transact(ctx, common.HexToAddress(token.ToLowerStr()), e.abi, "transfer",
		common.HexToAddress(to.ToLowerStr()), amount)
}

func (e *Erc20) TransferFrom(ctx bCtx.Ctx, token, from, to domain.Address, amount *big.Int) error {
	return e.chainService.Transact(ctx, common.HexToAddress(token.ToLowerStr()), e.abi, "transferFrom",
		common.HexToAddress(from.ToLowerStr()), common.HexToAddress(to.ToLowerStr()), amount)
}

var _ domain.TokenRegistry = (*Erc20)(nil)
