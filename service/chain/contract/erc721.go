package contract

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	baseabi "github.com/unit-xyz/goapi/base/abi"
	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/chain"
)

// Erc721 resolves ownership and approval queries against on-chain
// collections and moves items with the operator key.
type Erc721 struct {
	chainService chain.Client
	abi          ethabi.ABI
}

func NewErc721(chainService chain.Client) *Erc721 {
	return &Erc721{
		abi:          baseabi.ERC721TokenABI,
		chainService: chainService,
	}
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, nft domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, ok := chain.ToTokenId(tokenId.String())
	if !ok {
		return "", domain.ErrBadParamInput
	}
	unpacked, err := e.chainService.Call(ctx, common.HexToAddress(nft.ToLowerStr()), e.abi, "ownerOf", id)
	if err != nil {
		return "", err
	}
	return domain.Address(unpacked[0].(common.Address).Hex()).ToLower(), nil
}

func (e *Erc721) IsApproved(ctx bCtx.Ctx, owner, operator, nft domain.Address, tokenId domain.TokenId) (bool, error) {
	id, ok := chain.ToTokenId(tokenId.String())
	if !ok {
		return false, domain.ErrBadParamInput
	}
	contractAddr := common.HexToAddress(nft.ToLowerStr())
	unpacked, err := e.chainService.Call(ctx, contractAddr, e.abi, "getApproved", id)
	if err != nil {
		return false, err
	}
	if domain.Address(unpacked[0].(common.Address).Hex()).Equals(operator) {
		return true, nil
	}
	unpacked, err = e.chainService.Call(ctx, contractAddr, e.abi, "isApprovedForAll",
		common.HexToAddress(owner.ToLowerStr()), common.HexToAddress(operator.ToLowerStr()))
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) TransferFrom(ctx bCtx.Ctx, nft, from, to domain.Address, tokenId domain.TokenId) error {
	id, ok := chain.ToTokenId(tokenId.String())
	if !ok {
		return domain.ErrBadParamInput
	}
	return e.chainService.Transact(ctx, common.HexToAddress(nft.ToLowerStr()), e.abi, "transferFrom",
		common.HexToAddress(from.ToLowerStr()), common.HexToAddress(to.ToLowerStr()), id)
}

var _ domain.NftRegistry = (*Erc721)(nil)
