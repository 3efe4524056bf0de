//go:build wireinject
// +build wireinject

package wire

import (
	"loanportal-server/internal/fieldcatalog/httpapi"
	"loanportal-server/internal/fieldcatalog/persistence"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/sql"

	"github.com/google/wire"
)

var InfrastructureSet = wire.NewSet(
	provideAppConfig,
	provideNode,
	provideDatabase,
	wire.Bind(new(sql.ORM), new(*sql.DB)),
	providePubSubFactory,
	providePublisherFactory,
	provideConsumerFactory,
	provideCache,
	provideReadiness,
	provideUpdateQueue,
	wire.Bind(new(usecases.UpdateScheduler), new(*async.ThrottledQueue)),
	provideAuthorizer,
)

var FieldCatalogSet = wire.NewSet(
	persistence.NewFieldDefinitionRepository,
	provideCachedRepository,
	wire.Bind(new(usecases.FieldDefinitionRepository), new(*persistence.CachedFieldDefinitionRepository)),
	wire.Bind(new(usecases.CatalogCache), new(*persistence.CachedFieldDefinitionRepository)),
	usecases.NewFieldDefinitionService,
	wire.Bind(new(usecases.FieldDefinitionService), new(*usecases.SimpleFieldDefinitionService)),
	usecases.NewFieldResolver,
	wire.Bind(new(usecases.FieldResolver), new(*usecases.SimpleFieldResolver)),
	provideEvaluator,
	usecases.NewRecordEvaluationService,
	wire.Bind(new(usecases.RecordEvaluationService), new(*usecases.SimpleRecordEvaluationService)),
	usecases.NewReorderService,
	wire.Bind(new(usecases.ReorderService), new(*usecases.SimpleReorderService)),
	provideWriteAuthorizer,
	wire.Bind(new(usecases.WriteAuthorizer), new(*usecases.SimpleWriteAuthorizer)),
	usecases.NewCatalogChangeWorker,
	provideAuditWorker,
	usecases.NewCatalogSeeder,
	httpapi.NewFieldDefinitionController,
	httpapi.NewFieldCatalogController,
	httpapi.NewFieldCatalogWebSocketController,
)

func InitializeApplication(broker async.InternalBroker) (*Application, func(), error) {
	wire.Build(
		InfrastructureSet,
		FieldCatalogSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
