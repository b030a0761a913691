package bybit

import (
	"context"
	"fmt"
)

// AccountType selects which sub-account the wallet query reads.
type AccountType string

const (
	AccountTypeUnified  AccountType = "UNIFIED"
	AccountTypeContract AccountType = "CONTRACT"
)

// WalletSnapshot is the account totals at one point in time. Bybit reports
// these as strings; they are parsed into floats here.
type WalletSnapshot struct {
	AccountType           string
	TotalEquity           float64
	TotalWalletBalance    float64
	TotalMarginBalance    float64
	TotalInitialMargin    float64
	TotalAvailableBalance float64
	TotalPerpUPL          float64
}

// GetWalletSnapshot retrieves the account wallet totals.
func (c *Client) GetWalletSnapshot(ctx context.Context, accountType AccountType) (*WalletSnapshot, error) {
	params := map[string]interface{}{
		"accountType": string(accountType),
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return nil, WrapAPIError("get wallet", err)
	}

	var walletResult struct {
		List []struct {
			AccountType           string `json:"accountType"`
			TotalEquity           string `json:"totalEquity"`
			TotalWalletBalance    string `json:"totalWalletBalance"`
			TotalMarginBalance    string `json:"totalMarginBalance"`
			TotalInitialMargin    string `json:"totalInitialMargin"`
			TotalAvailableBalance string `json:"totalAvailableBalance"`
			TotalPerpUPL          string `json:"totalPerpUPL"`
		} `json:"list"`
	}
	if err := decodeResult(result, &walletResult); err != nil {
		return nil, WrapAPIError("get wallet", err)
	}
	if len(walletResult.List) == 0 {
		return nil, fmt.Errorf("no account data found")
	}

	account := walletResult.List[0]
	return &WalletSnapshot{
		AccountType:           account.AccountType,
		TotalEquity:           parseFloat64(account.TotalEquity),
		TotalWalletBalance:    parseFloat64(account.TotalWalletBalance),
		TotalMarginBalance:    parseFloat64(account.TotalMarginBalance),
		TotalInitialMargin:    parseFloat64(account.TotalInitialMargin),
		TotalAvailableBalance: parseFloat64(account.TotalAvailableBalance),
		TotalPerpUPL:          parseFloat64(account.TotalPerpUPL),
	}, nil
}
