package blockchain

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	selectorApprove        = crypto.Keccak256([]byte("approve(address,uint256)"))[:4]
	selectorDepositForBurn = crypto.Keccak256([]byte("depositForBurn(uint256,uint32,bytes32,address)"))[:4]
	selectorReceiveMessage = crypto.Keccak256([]byte("receiveMessage(bytes,bytes)"))[:4]
	selectorTransfer       = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
)

// EncodeApprove builds calldata approving a spender for an amount in
// token base units.
func EncodeApprove(spender string, amount *big.Int) string {
	data := append([]byte{}, selectorApprove...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(spender).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return hexutil(data)
}

// EncodeTransfer builds ERC20 transfer calldata.
func EncodeTransfer(recipient string, amount *big.Int) string {
	data := append([]byte{}, selectorTransfer...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(recipient).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return hexutil(data)
}

// EncodeDepositForBurn builds calldata burning USDC toward a destination
// domain. The mint recipient address is left padded to bytes32.
func EncodeDepositForBurn(amount *big.Int, destDomain uint32, mintRecipient, burnToken string) string {
	data := append([]byte{}, selectorDepositForBurn...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(new(big.Int).SetUint64(uint64(destDomain)).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(mintRecipient).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(burnToken).Bytes(), 32)...)
	return hexutil(data)
}

// EncodeReceiveMessage builds calldata delivering an attested burn message
// to the destination transmitter. Both arguments are dynamic bytes, so the
// head holds two offsets followed by length-prefixed, 32-padded payloads.
func EncodeReceiveMessage(message, attestation []byte) string {
	msgPadded := padBytes(message)
	attPadded := padBytes(attestation)

	data := append([]byte{}, selectorReceiveMessage...)
	// offset of message payload: two head words
	data = append(data, common.LeftPadBytes(big.NewInt(64).Bytes(), 32)...)
	// offset of attestation payload
	attOffset := int64(64 + 32 + len(msgPadded))
	data = append(data, common.LeftPadBytes(big.NewInt(attOffset).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(message))).Bytes(), 32)...)
	data = append(data, msgPadded...)
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(attestation))).Bytes(), 32)...)
	data = append(data, attPadded...)
	return hexutil(data)
}

// MessageHash computes the keccak hash over a raw burn message, the key
// the attestation service and mint path are joined on.
func MessageHash(message []byte) string {
	return hexutil(crypto.Keccak256(message))
}

func padBytes(b []byte) []byte {
	if rem := len(b) % 32; rem != 0 {
		return append(append([]byte{}, b...), make([]byte, 32-rem)...)
	}
	return append([]byte{}, b...)
}

func hexutil(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
