package dataflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// EdgarClient retrieves SEC filings and XBRL company facts. The SEC
// requires a descriptive User-Agent with contact information and caps
// clients at ten requests per second.
type EdgarClient struct {
	client  *resty.Client
	cache   *CacheManager
	guard   *ProviderGuard
	dataDir string

	mu   sync.Mutex
	ciks map[string]string // upper ticker -> zero-padded CIK
}

// NewEdgarClient creates an EDGAR client.
func NewEdgarClient(cfg *config.Config) *EdgarClient {
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	client.SetHeader("User-Agent", "Aletheia Research research@aletheia-intel.dev")

	cacheDir := filepath.Join(cfg.DataCacheDir, "edgar")
	return &EdgarClient{
		client:  client,
		cache:   NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		guard:   NewProviderGuard("edgar", 8, 8),
		dataDir: cfg.DataDir,
	}
}

type edgarSubmissions struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent edgarRecent `json:"recent"`
	} `json:"filings"`
}

type edgarRecent struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// rows is the usable length of the recent lists. They are parallel
// arrays in the SEC payload and a malformed filing index can ship them
// at different lengths.
func (r edgarRecent) rows() int {
	n := len(r.Form)
	for _, l := range []int{len(r.AccessionNumber), len(r.PrimaryDocument), len(r.FilingDate)} {
		if l < n {
			n = l
		}
	}
	return n
}

type edgarCompanyFacts struct {
	EntityName string `json:"entityName"`
	Facts      struct {
		USGAAP map[string]struct {
			Label string `json:"label"`
			Units map[string][]struct {
				End   string  `json:"end"`
				Val   float64 `json:"val"`
				FY    int     `json:"fy"`
				FP    string  `json:"fp"`
				Form  string  `json:"form"`
				Frame string  `json:"frame,omitempty"`
			} `json:"units"`
		} `json:"us-gaap"`
	} `json:"facts"`
}

// lookupCIK resolves a ticker to its zero-padded CIK using the SEC's
// public ticker file. The map is fetched once per process.
func (ec *EdgarClient) lookupCIK(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.ciks == nil {
		var raw map[string]struct {
			CIK    int64  `json:"cik_str"`
			Ticker string `json:"ticker"`
		}
		err := ec.guard.Do(ctx, func() error {
			resp, err := ec.client.R().
				SetContext(ctx).
				SetResult(&raw).
				Get("https://www.sec.gov/files/company_tickers.json")
			if err != nil {
				return fmt.Errorf("failed to fetch ticker map: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("SEC HTTP %d for ticker map", resp.StatusCode())
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		ec.ciks = make(map[string]string, len(raw))
		for _, entry := range raw {
			ec.ciks[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
		}
	}

	cik, ok := ec.ciks[ticker]
	if !ok {
		return "", fmt.Errorf("no CIK found for ticker %s", ticker)
	}
	return cik, nil
}

// GetFilings lists and downloads the most recent filings of the given
// form types (10-K, 10-Q, 8-K, ...) for a ticker. Documents are stored
// under <data>/sec_filings/<ticker>/.
func (ec *EdgarClient) GetFilings(ctx context.Context, ticker string, formTypes []string, limit int) ([]*models.Filing, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if len(formTypes) == 0 {
		formTypes = []string{"10-K", "10-Q", "8-K"}
	}
	if limit <= 0 {
		limit = 5
	}

	cik, err := ec.lookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var submissions edgarSubmissions
	err = WithRetry(DefaultRetryConfig(), func() error {
		return ec.guard.Do(ctx, func() error {
			resp, err := ec.client.R().
				SetContext(ctx).
				SetResult(&submissions).
				Get(fmt.Sprintf("https://data.sec.gov/submissions/CIK%s.json", cik))
			if err != nil {
				return fmt.Errorf("failed to fetch submissions: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("SEC HTTP %d for submissions", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(formTypes))
	for _, form := range formTypes {
		wanted[strings.ToUpper(form)] = true
	}

	recent := submissions.Filings.Recent
	filings := make([]*models.Filing, 0, limit)
	for i := 0; i < recent.rows(); i++ {
		if len(filings) >= limit {
			break
		}
		if !wanted[strings.ToUpper(recent.Form[i])] {
			continue
		}
		filing, err := ec.downloadFiling(ctx, ticker, cik, recent.Form[i],
			recent.AccessionNumber[i], recent.PrimaryDocument[i], recent.FilingDate[i])
		if err != nil {
			continue
		}
		filings = append(filings, filing)
	}
	return filings, nil
}

func (ec *EdgarClient) downloadFiling(ctx context.Context, ticker, cik, form, accession, primaryDoc, filedAt string) (*models.Filing, error) {
	dir := filepath.Join(ec.dataDir, "sec_filings", ticker, form)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, primaryDoc)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		filed, _ := time.Parse("2006-01-02", filedAt)
		return &models.Filing{
			Ticker:          ticker,
			FilingType:      form,
			AccessionNumber: accession,
			Filename:        primaryDoc,
			Path:            path,
			SizeBytes:       info.Size(),
			FiledAt:         filed,
			Source:          "sec_edgar",
		}, nil
	}

	accessionFlat := strings.ReplaceAll(accession, "-", "")
	docURL := fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s",
		strings.TrimLeft(cik, "0"), accessionFlat, primaryDoc)

	err := ec.guard.Do(ctx, func() error {
		resp, err := ec.client.R().SetContext(ctx).SetOutput(path).Get(docURL)
		if err != nil {
			return fmt.Errorf("failed to download filing: %w", err)
		}
		if resp.StatusCode() != 200 {
			os.Remove(path)
			return fmt.Errorf("SEC HTTP %d for %s", resp.StatusCode(), primaryDoc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	filed, _ := time.Parse("2006-01-02", filedAt)
	return &models.Filing{
		Ticker:          ticker,
		FilingType:      form,
		AccessionNumber: accession,
		Filename:        primaryDoc,
		Path:            path,
		SizeBytes:       info.Size(),
		FiledAt:         filed,
		Source:          "sec_edgar",
	}, nil
}

// statementConcepts maps statement types to the XBRL concepts reported
// for them.
var statementConcepts = map[string][]string{
	"income": {
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"CostOfRevenue",
		"GrossProfit",
		"OperatingIncomeLoss",
		"NetIncomeLoss",
		"EarningsPerShareDiluted",
	},
	"balance": {
		"Assets",
		"AssetsCurrent",
		"Liabilities",
		"LiabilitiesCurrent",
		"StockholdersEquity",
		"CashAndCashEquivalentsAtCarryingValue",
		"LongTermDebtNoncurrent",
	},
	"cash": {
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInInvestingActivities",
		"NetCashProvidedByUsedInFinancingActivities",
		"PaymentsToAcquirePropertyPlantAndEquipment",
	},
}

// GetFinancialStatements derives statement rows for a ticker from SEC
// XBRL company facts. statementType is income, balance or cash; period
// is annual or quarterly.
func (ec *EdgarClient) GetFinancialStatements(ctx context.Context, ticker, statementType, period string) (*models.FinancialStatements, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	concepts, ok := statementConcepts[statementType]
	if !ok {
		return nil, fmt.Errorf("unknown statement type %q", statementType)
	}
	if period != "quarterly" {
		period = "annual"
	}

	cacheKey := fmt.Sprintf("%s_%s_%s", ticker, statementType, period)
	var cached models.FinancialStatements
	if ec.cache.Get("edgar", "statements", cacheKey, &cached) {
		return &cached, nil
	}

	cik, err := ec.lookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var facts edgarCompanyFacts
	err = WithRetry(DefaultRetryConfig(), func() error {
		return ec.guard.Do(ctx, func() error {
			resp, err := ec.client.R().
				SetContext(ctx).
				SetResult(&facts).
				Get(fmt.Sprintf("https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json", cik))
			if err != nil {
				return fmt.Errorf("failed to fetch company facts: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("SEC HTTP %d for company facts", resp.StatusCode())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	statements := &models.FinancialStatements{
		Ticker:        ticker,
		StatementType: statementType,
		Period:        period,
		Source:        "sec_edgar",
	}

	for _, concept := range concepts {
		fact, ok := facts.Facts.USGAAP[concept]
		if !ok {
			continue
		}
		row := &models.StatementRow{
			Item:   fact.Label,
			Values: make(map[string]float64),
		}
		if row.Item == "" {
			row.Item = concept
		}
		for _, points := range fact.Units {
			for _, p := range points {
				annual := p.FP == "FY" || strings.HasSuffix(p.Form, "10-K")
				if period == "annual" && !annual {
					continue
				}
				if period == "quarterly" && annual {
					continue
				}
				label := p.End
				if p.FY > 0 {
					label = fmt.Sprintf("%d %s", p.FY, p.FP)
				}
				row.Values[label] = p.Val
			}
		}
		if len(row.Values) > 0 {
			statements.Rows = append(statements.Rows, row)
		}
	}

	ec.cache.Set("edgar", "statements", cacheKey, statements)
	return statements, nil
}
