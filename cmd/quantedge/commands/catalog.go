package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/catalog"
	"github.com/wonny/quantedge/pkg/config"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "종목 카탈로그 조회",
	Long: `카탈로그(CATALOG_FILE 또는 내장 목록)를 출력합니다.

Example:
  go run ./cmd/quantedge catalog
  go run ./cmd/quantedge catalog --sector Banking
  go run ./cmd/quantedge catalog sectors`,
	RunE: runCatalogList,
}

var catalogSectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "섹터 목록",
	RunE:  runCatalogSectors,
}

var (
	catalogSector string
	catalogQuery  string
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSectorsCmd)

	catalogCmd.Flags().StringVar(&catalogSector, "sector", "", "섹터 필터")
	catalogCmd.Flags().StringVarP(&catalogQuery, "q", "q", "", "종목/이름 검색")
}

// loadCatalog reads the catalog without wiring the quote feed
func loadCatalog() (*catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.CatalogFile != "" {
		return catalog.Load(cfg.CatalogFile)
	}
	return catalog.Default()
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	instruments := cat.Filter(catalogQuery, catalogSector)

	PrintHeader(fmt.Sprintf("Instruments (%d of %d)", len(instruments), cat.Len()))
	widths := []int{12, 30, 14, 6, 6}
	PrintTableHeader([]string{"SYMBOL", "NAME", "SECTOR", "INDEX", "IV"}, widths)
	for _, inst := range instruments {
		index := ""
		if inst.IsIndex {
			index = "yes"
		}
		PrintTableRow([]string{inst.Symbol, inst.Name, inst.Sector, index, fmt.Sprintf("%.2f", inst.IV)}, widths)
	}
	return nil
}

func runCatalogSectors(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	for _, s := range cat.Sectors() {
		fmt.Printf("   • %s\n", s)
	}
	return nil
}
