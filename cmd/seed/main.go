package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	disambiguationservice "github.com/davidkwan/orggraph/modules/disambiguation/service"
	employmentrepo "github.com/davidkwan/orggraph/modules/employment/repository"
	facadeservice "github.com/davidkwan/orggraph/modules/facade/service"
	graphservice "github.com/davidkwan/orggraph/modules/graph/service"
	ingestmodel "github.com/davidkwan/orggraph/modules/ingest/model"
	ingestservice "github.com/davidkwan/orggraph/modules/ingest/service"
	nameresolverservice "github.com/davidkwan/orggraph/modules/nameresolver/service"
	orgrepo "github.com/davidkwan/orggraph/modules/organizations/repository"
	orgservice "github.com/davidkwan/orggraph/modules/organizations/service"
	peoplerepo "github.com/davidkwan/orggraph/modules/people/repository"
	queryrepo "github.com/davidkwan/orggraph/modules/query/repository"
	queryservice "github.com/davidkwan/orggraph/modules/query/service"
)

//go:embed fixture.json
var embeddedFixture embed.FS

// fixture is the on-disk shape of the demo dataset loaded by this command:
// a flat organization hierarchy plus a handful of raw employment records
// exercising the same identity-resolution path as the bulk ingest endpoint.
type fixture struct {
	Organizations []orgSeed    `json:"organizations"`
	Records       []recordSeed `json:"records"`
}

type orgSeed struct {
	Org            string   `json:"org"`
	URL            string   `json:"url"`
	SubParentURL   *string  `json:"sub_parent_org_url"`
	SGDIEntityType *string  `json:"sgdi_entity_type"`
	Parts          []string `json:"parts"`
}

type recordSeed struct {
	CleanName string `json:"clean_name"`
	RawName   string `json:"raw_name"`
	OrgName   string `json:"org_name"`
	OrgURL    string `json:"org_url"`
	Rank      string `json:"rank"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

const dateLayout = "2006-01-02"

func main() {
	_ = godotenv.Load()

	fixturePath := envOr("SEED_FIXTURE_PATH", "")
	raw, err := loadFixture(fixturePath)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "temporal_org"),
		envOr("DB_PASSWORD", "temporal_org"),
		envOr("DB_NAME", "temporal_org"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	appLogger, err := logger.New("info", "console")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	peopleRepository := peoplerepo.NewPeopleRepository(pool)
	orgRepository := orgrepo.NewOrganizationRepository(pool)
	employmentRepository := employmentrepo.NewEmploymentRepository(pool)
	queryRepository := queryrepo.NewQueryRepository(pool)

	resolver := nameresolverservice.NewResolver(peopleRepository, appLogger)
	disambiguator := disambiguationservice.NewDisambiguator(orgRepository)
	querySvc := queryservice.NewQueryService(queryRepository, employmentRepository, orgRepository, resolver, appLogger)
	graphSvc := graphservice.NewGraphService(employmentRepository, orgRepository, appLogger, nil, "")
	orgSvc := orgservice.NewOrganizationService(orgRepository, pool, graphSvc, appLogger)
	ingestSvc := ingestservice.NewIngestService(pool, disambiguator, employmentRepository, graphSvc, appLogger)
	fac := facadeservice.New(querySvc, graphSvc, orgSvc, ingestSvc, peopleRepository, resolver, appLogger)

	seeds := make([]orgservice.OrgHierarchySeed, len(raw.Organizations))
	for i, o := range raw.Organizations {
		seeds[i] = orgservice.OrgHierarchySeed{
			Org:             o.Org,
			URL:             o.URL,
			SubParentOrgURL: o.SubParentURL,
			SGDIEntityType:  o.SGDIEntityType,
			Parts:           o.Parts,
		}
	}
	preseedResult := orgSvc.PreseedOrganizations(ctx, seeds)
	fmt.Printf("preseeded organizations: created=%d updated=%d failed=%d\n",
		preseedResult.Created, preseedResult.Updated, preseedResult.Failed)

	records := make([]ingestmodel.RawRecord, 0, len(raw.Records))
	for _, r := range raw.Records {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			log.Fatalf("parse start_date for %s: %v", r.CleanName, err)
		}
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			log.Fatalf("parse end_date for %s: %v", r.CleanName, err)
		}
		records = append(records, ingestmodel.RawRecord{
			CleanName: r.CleanName,
			RawName:   r.RawName,
			OrgName:   r.OrgName,
			OrgURL:    r.OrgURL,
			Rank:      r.Rank,
			StartDate: start,
			EndDate:   end,
		})
	}

	bulkResult, err := fac.BulkInsertRecords(ctx, records, 0)
	if err != nil {
		log.Fatalf("bulk insert: %v", err)
	}
	fmt.Printf("ingested employment records: processed=%d successful=%d failed=%d\n",
		bulkResult.TotalProcessed, bulkResult.Successful, bulkResult.Failed)

	fmt.Println("seed completed")
}

func loadFixture(path string) (*fixture, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = embeddedFixture.ReadFile("fixture.json")
	}
	if err != nil {
		return nil, err
	}

	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
