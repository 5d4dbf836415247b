package repository

import (
	bookingRepo "fieldserve/database/repository/booking"
	catalogRepo "fieldserve/database/repository/catalog"
	configRepo "fieldserve/database/repository/configrepo"
	engineerRepo "fieldserve/database/repository/engineer"
)

// Re-export the EngineerRepository interface and constructor.
type EngineerRepository = engineerRepo.EngineerRepository

var NewMongoEngineerRepo = engineerRepo.NewMongoEngineerRepo

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// ErrSlotConflict surfaces a lost commit race; retryable by the caller.
var ErrSlotConflict = bookingRepo.ErrSlotConflict

// Re-export the CatalogRepository interface and constructor.
type CatalogRepository = catalogRepo.CatalogRepository

var NewMongoCatalogRepo = catalogRepo.NewMongoCatalogRepo

// Re-export the ConfigRepository interface and constructor.
type ConfigRepository = configRepo.ConfigRepository

var NewMongoConfigRepo = configRepo.NewMongoConfigRepo
