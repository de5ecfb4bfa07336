package seatmap

import (
	"math"

	"flight-reservation/config"
	"flight-reservation/internal/model"
)

// SectionSpec 艙等的顯示名稱與票價倍率
type SectionSpec struct {
	Class      model.SectionClass
	Name       string
	Multiplier float64
}

// Catalog 艙等設定，由設定檔注入，執行期間不變
type Catalog struct {
	BusinessFraction float64
	Business         SectionSpec
	Economy          SectionSpec
}

func NewCatalog(cfg config.BookingConfig) Catalog {
	return Catalog{
		BusinessFraction: cfg.BusinessFraction,
		Business: SectionSpec{
			Class:      model.SectionClassBusiness,
			Name:       cfg.BusinessName,
			Multiplier: cfg.BusinessMultiplier,
		},
		Economy: SectionSpec{
			Class:      model.SectionClassEconomy,
			Name:       cfg.EconomyName,
			Multiplier: cfg.EconomyMultiplier,
		},
	}
}

// Split 把總座位數切成商務艙與經濟艙；商務艙無座位時不建立
func (c Catalog) Split(capacity int, businessFraction *float64) []*model.Section {
	if capacity <= 0 {
		return nil
	}

	fraction := c.BusinessFraction
	if businessFraction != nil {
		fraction = *businessFraction
	}
	if fraction < 0 {
		fraction = 0
	}

	business := int(math.Floor(float64(capacity) * fraction))
	if business >= capacity {
		business = capacity - 1
	}
	economy := capacity - business

	sections := make([]*model.Section, 0, 2)
	if business > 0 {
		sections = append(sections, c.Business.section(business, len(sections)))
	}
	sections = append(sections, c.Economy.section(economy, len(sections)))
	return sections
}

func (s SectionSpec) section(capacity, position int) *model.Section {
	return &model.Section{
		Class:           s.Class,
		Name:            s.Name,
		Capacity:        capacity,
		PriceMultiplier: s.Multiplier,
		Position:        position,
	}
}

// Price 票價 = 基本票價 x 艙等倍率，四捨五入到分
func Price(baseFare, multiplier float64) float64 {
	return math.Round(baseFare*multiplier*100) / 100
}
