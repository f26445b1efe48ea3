// Command seed loads a small demonstration catalog: four capabilities, four
// use cases, four tools, and the relationships between them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/pkg/catalog"
	"github.com/entarch/archcat-go/pkg/logger"
)

var (
	libsqlURL     = flag.String("libsql-url", "", "libSQL database URL (default: file:./archcat.db)")
	authToken     = flag.String("auth-token", "", "Authentication token for remote databases")
	adminUser     = flag.String("admin-user", "", "Create an admin with this username")
	adminPassword = flag.String("admin-password", "", "Password for the created admin")
)

type seedEntity struct {
	name        string
	entityType  string
	description string
	metadata    map[string]any
	tags        []string
}

type seedRelationship struct {
	source string
	target string
	kind   string
}

var seedEntities = []seedEntity{
	{"Cloud Infrastructure Management", apptype.EntityTypeCapability,
		"Enterprise capability for Cloud Infrastructure Management",
		map[string]any{"domain": "Infrastructure", "maturity": "High", "criticality": "High", "technology_stack": []string{"Cloud", "DevOps"}},
		[]string{"infrastructure", "cloud"}},
	{"Data Analytics Platform", apptype.EntityTypeCapability,
		"Enterprise capability for Data Analytics Platform",
		map[string]any{"domain": "Analytics", "maturity": "Medium", "criticality": "High", "technology_stack": []string{"Big Data", "Analytics"}},
		[]string{"analytics"}},
	{"Security & Compliance", apptype.EntityTypeCapability,
		"Enterprise capability for Security & Compliance",
		map[string]any{"domain": "Security", "maturity": "High", "criticality": "High", "technology_stack": []string{"Security", "Compliance"}},
		[]string{"security"}},
	{"API Management", apptype.EntityTypeCapability,
		"Enterprise capability for API Management",
		map[string]any{"domain": "Integration", "maturity": "High", "criticality": "High", "technology_stack": []string{"API", "Integration"}},
		[]string{"integration"}},

	{"Real-time Data Processing", apptype.EntityTypeUseCase,
		"Use case for Real-time Data Processing",
		map[string]any{"domain": "Analytics", "complexity": "High", "priority": "High", "technology_stack": []string{"Big Data", "Stream Processing"}},
		[]string{"analytics"}},
	{"User Authentication", apptype.EntityTypeUseCase,
		"Use case for User Authentication",
		map[string]any{"domain": "Security", "complexity": "Medium", "priority": "High", "technology_stack": []string{"Security", "IAM"}},
		[]string{"security"}},
	{"Resource Monitoring", apptype.EntityTypeUseCase,
		"Use case for Resource Monitoring",
		map[string]any{"domain": "Infrastructure", "complexity": "Medium", "priority": "High", "technology_stack": []string{"Monitoring", "DevOps"}},
		[]string{"infrastructure"}},
	{"API Gateway Integration", apptype.EntityTypeUseCase,
		"Use case for API Gateway Integration",
		map[string]any{"domain": "Integration", "complexity": "High", "priority": "High", "technology_stack": []string{"API", "Integration"}},
		[]string{"integration"}},

	{"AWS Cloud Services", apptype.EntityTypeTool,
		"Implementation tool: AWS Cloud Services",
		map[string]any{"vendor": "AWS", "deployment": "Cloud", "technology_stack": []string{"Cloud", "Infrastructure"}},
		[]string{"cloud"}},
	{"Kubernetes", apptype.EntityTypeTool,
		"Implementation tool: Kubernetes",
		map[string]any{"vendor": "CNCF", "deployment": "Hybrid", "technology_stack": []string{"Container", "DevOps"}},
		[]string{"cloud", "infrastructure"}},
	{"Elasticsearch", apptype.EntityTypeTool,
		"Implementation tool: Elasticsearch",
		map[string]any{"vendor": "Elastic", "deployment": "Hybrid", "technology_stack": []string{"Search", "Analytics"}},
		[]string{"analytics"}},
	{"Kong API Gateway", apptype.EntityTypeTool,
		"Implementation tool: Kong API Gateway",
		map[string]any{"vendor": "Kong", "deployment": "Hybrid", "technology_stack": []string{"API", "Integration"}},
		[]string{"integration"}},
}

var seedRelationships = []seedRelationship{
	{"Cloud Infrastructure Management", "Resource Monitoring", "enables"},
	{"Cloud Infrastructure Management", "AWS Cloud Services", "implemented by"},
	{"Cloud Infrastructure Management", "Kubernetes", "uses"},
	{"Data Analytics Platform", "Real-time Data Processing", "supports"},
	{"Data Analytics Platform", "Elasticsearch", "powered by"},
	{"API Management", "API Gateway Integration", "enables"},
	{"API Management", "Kong API Gateway", "implemented by"},
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	cfg := catalog.LoadConfig()
	if *libsqlURL != "" {
		cfg.URL = *libsqlURL
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}

	svc, err := catalog.NewService(cfg)
	if err != nil {
		log.Fatal("failed to open catalog", zap.Error(err))
	}
	defer svc.Close()

	ctx := context.Background()
	if err := run(ctx, svc, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("sample data loaded", zap.Int("entities", len(seedEntities)), zap.Int("relationships", len(seedRelationships)))
}

func run(ctx context.Context, svc *catalog.Service, log *zap.Logger) error {
	ids := make(map[string]string, len(seedEntities))

	for _, e := range seedEntities {
		metadata, err := json.Marshal(e.metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %q: %w", e.name, err)
		}
		created, err := svc.CreateEntities(ctx, []apptype.EntityInput{{
			Name:        e.name,
			Type:        e.entityType,
			Description: e.description,
			Metadata:    metadata,
			Tags:        e.tags,
		}})
		if err != nil {
			return fmt.Errorf("creating %q: %w", e.name, err)
		}
		ids[e.name] = created[0]
		log.Info("created entity", zap.String("name", e.name), zap.String("type", e.entityType))
	}

	for _, r := range seedRelationships {
		if _, err := svc.CreateRelationships(ctx, []apptype.RelationshipInput{{
			SourceID: ids[r.source],
			TargetID: ids[r.target],
			Type:     r.kind,
		}}); err != nil {
			return fmt.Errorf("linking %q -> %q: %w", r.source, r.target, err)
		}
		log.Info("created relationship", zap.String("type", r.kind))
	}

	if *adminUser != "" {
		if *adminPassword == "" {
			return fmt.Errorf("admin-password is required with admin-user")
		}
		if err := svc.CreateAdmin(ctx, *adminUser, *adminPassword, "admin"); err != nil {
			return fmt.Errorf("creating admin %q: %w", *adminUser, err)
		}
		log.Info("created admin", zap.String("username", *adminUser))
	}
	return nil
}
