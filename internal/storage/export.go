package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"MetalTracker/internal/model"
)

// CSV export kinds.
const (
	KindTransactions = "transactions"
	KindPrices       = "priceData"
	KindLimitOrders  = "limitOrders"
)

const dateLayout = "2006-01-02"

// ExportJSON writes the data set as indented JSON.
func ExportJSON(w io.Writer, data *model.AppData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	return nil
}

// ImportJSON decodes a data set, fills missing collections and rejects unknown versions.
func ImportJSON(r io.Reader) (*model.AppData, error) {
	var data model.AppData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if data.Version != "" && data.Version != model.DataVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, data.Version)
	}
	if data.Config.TargetAllocation == nil || data.Config.LimitOrderSpreads == nil {
		defaults := model.DefaultStrategyConfig(data.Config.AccumulationStartDate)
		if data.Config.TargetAllocation == nil {
			data.Config.TargetAllocation = defaults.TargetAllocation
		}
		if data.Config.LimitOrderSpreads == nil {
			data.Config.LimitOrderSpreads = defaults.LimitOrderSpreads
		}
	}
	normalize(&data)
	return &data, nil
}

// ExportCSV writes one collection as CSV with a header row.
func ExportCSV(w io.Writer, data *model.AppData, kind string) error {
	cw := csv.NewWriter(w)
	var rows [][]string
	switch kind {
	case KindTransactions:
		rows = append(rows, []string{"Date", "Metal", "Type", "Quantity (g)", "Price (/g)", "Amount", "Platform", "RSI", "GSR", "Notes"})
		for _, t := range data.Transactions {
			rows = append(rows, []string{
				t.Date.Format(dateLayout), string(t.Metal), string(t.Type),
				num(t.Quantity), num(t.Price), num(t.Amount),
				t.Platform, num(t.RSI), num(t.GSR), t.Notes,
			})
		}
	case KindPrices:
		rows = append(rows, []string{"Date", "Gold Price", "Silver Price", "Platinum Price", "Gold RSI", "Silver RSI", "Platinum RSI", "VIX"})
		for _, p := range data.PriceData {
			vix := ""
			if p.VIX != nil {
				vix = num(*p.VIX)
			}
			rows = append(rows, []string{
				p.Date.Format(dateLayout),
				num(p.GoldPrice), num(p.SilverPrice), num(p.PlatinumPrice),
				num(p.GoldRSI), num(p.SilverRSI), num(p.PlatinumRSI), vix,
			})
		}
	case KindLimitOrders:
		rows = append(rows, []string{"Created Date", "Metal", "Tier", "Amount", "Target Price (/g)", "Quantity (g)", "Status", "Filled Date", "Filled Price"})
		for _, o := range data.LimitOrders {
			filledDate, filledPrice := "", ""
			if o.FilledDate != nil {
				filledDate = o.FilledDate.Format(dateLayout)
			}
			if o.FilledPrice != nil {
				filledPrice = num(*o.FilledPrice)
			}
			rows = append(rows, []string{
				o.CreatedDate.Format(dateLayout), string(o.Metal), strconv.Itoa(o.Tier),
				num(o.Amount), num(o.TargetPrice), num(o.Quantity), string(o.Status),
				filledDate, filledPrice,
			})
		}
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
