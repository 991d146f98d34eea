// Command seed fills an empty database with demo roles, users, stock and
// one order so the API can be explored right away.  Running it twice
// leaves existing roles, users and items alone.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/shoe-workshop/internal/config"
	"github.com/iliyamo/shoe-workshop/internal/database"
	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/repository"
	"github.com/iliyamo/shoe-workshop/internal/service"
	"github.com/iliyamo/shoe-workshop/internal/utils"
)

type seedUser struct {
	name, email, password string
	role                  model.Role
}

var seedUsers = []seedUser{
	{"Admin", "admin@example.com", "adminpass", model.RoleAdmin},
	{"Worker", "worker@example.com", "workerpass", model.RoleWorker},
	{"Sales", "sales@example.com", "salespass", model.RoleSales},
}

var seedItems = []model.InventoryItem{
	{Name: "Sneaker X", Model: "X100", Size: "10", StockLevel: 50},
	{Name: "Boot Y", Model: "Y200", Size: "9", StockLevel: 30},
}

func main() {
	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	roles := repository.NewRoleRepo(db)
	users := repository.NewUserRepo(db)
	items := repository.NewInventoryRepo(db)
	batches := repository.NewBatchRepo(db)
	logs := repository.NewWorkerLogRepo(db)

	roleIDs := map[model.Role]uint64{}
	for _, r := range model.Roles {
		rec, err := roles.Upsert(ctx, r.String())
		if err != nil {
			log.Fatalf("role %s: %v", r, err)
		}
		roleIDs[r] = rec.ID
	}

	userIDs := map[model.Role]uint64{}
	for _, su := range seedUsers {
		u, err := users.GetByEmail(ctx, su.email)
		if errors.Is(err, repository.ErrUserNotFound) {
			hash, herr := utils.HashPassword(su.password, cfg.BcryptCost)
			if herr != nil {
				log.Fatalf("hash: %v", herr)
			}
			u = &model.User{Name: su.name, Email: su.email, PasswordHash: hash, RoleID: roleIDs[su.role]}
			err = users.Create(ctx, u)
		}
		if err != nil {
			log.Fatalf("user %s: %v", su.email, err)
		}
		userIDs[su.role] = u.ID
	}

	var created []uint64
	for _, it := range seedItems {
		taken, err := items.TripleTaken(ctx, it.Name, it.Model, it.Size, 0)
		if err != nil {
			log.Fatalf("item %s: %v", it.Name, err)
		}
		if taken {
			continue
		}
		if err := items.Create(ctx, &it); err != nil {
			log.Fatalf("item %s: %v", it.Name, err)
		}
		created = append(created, it.ID)
	}
	if len(created) == 0 {
		log.Info("seed: inventory already present, skipping orders")
		return
	}

	batch, err := batches.Create(ctx, "sole")
	if err != nil {
		log.Fatalf("batch: %v", err)
	}

	orders := service.NewOrderService(db, repository.NewOrderRepo(db), items,
		repository.NewPaymentRepo(db), logs, service.NopPublisher{})
	order, err := orders.Create(ctx, userIDs[model.RoleSales], service.CreateOrderInput{
		CustomerName:    "John Doe",
		InventoryItemID: created[0],
	})
	if err != nil {
		log.Fatalf("order: %v", err)
	}
	if _, err := orders.AddPayment(ctx, userIDs[model.RoleSales], order.ID, service.PaymentInput{
		Amount: decimal.RequireFromString("120.00"),
		Status: mo.Some(model.PaymentStatePending),
	}); err != nil {
		log.Fatalf("payment: %v", err)
	}

	orderID := order.ID
	if err := logs.Create(ctx, &model.WorkerLog{
		WorkerID: userIDs[model.RoleWorker],
		RoleID:   roleIDs[model.RoleWorker],
		BatchID:  batch.ID,
		OrderID:  &orderID,
		Quantity: 10,
	}); err != nil {
		log.Fatalf("worker log: %v", err)
	}
	log.Infof("seed: created order %d with batch %d", order.ID, batch.ID)
}
