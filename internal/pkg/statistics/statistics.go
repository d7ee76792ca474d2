package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/internal/pkg/cache"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
)

const (
	CacheKeyGrossTotal    = "statistics:revenue:gross"
	CacheKeyFeesTotal     = "statistics:revenue:fees"
	CacheKeyRefundsTotal  = "statistics:revenue:refunds"
	CacheKeyPayoutsTotal  = "statistics:payouts:completed"
	CacheKeyBookingsDaily = "statistics:bookings:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers         = "statistics:users:total"
	CacheExpiration       = 30 * time.Minute
)

// FinancialReport aggregates platform-wide money movement, all in minor units.
type FinancialReport struct {
	GrossMinor        int64 `json:"gross_minor"`
	PlatformFeesMinor int64 `json:"platform_fees_minor"`
	RefundsMinor      int64 `json:"refunds_minor"`
	PayoutsMinor      int64 `json:"payouts_minor"`
	BookingsToday     int64 `json:"bookings_today"`
	TotalUsers        int64 `json:"total_users"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached report is stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached report when stale.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to recompute.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recomputes all report figures and stores them in Redis.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	settled := []string{
		models.TransactionStatusCompleted,
		models.TransactionStatusPartiallyRefunded,
		models.TransactionStatusRefunded,
	}

	type sums struct {
		Gross    int64
		Fees     int64
		Refunded int64
	}
	var s sums
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_minor),0) AS gross, COALESCE(SUM(platform_fee_minor),0) AS fees, COALESCE(SUM(refunded_minor),0) AS refunded").
		Where("status IN ?", settled).
		Scan(&s).Error; err != nil {
		log.Printf("Error aggregating transactions: %v", err)
		return err
	}

	var payouts int64
	if err := db.Model(&models.Payout{}).
		Select("COALESCE(SUM(amount_minor),0)").
		Where("status = ?", models.PayoutStatusCompleted).
		Scan(&payouts).Error; err != nil {
		log.Printf("Error aggregating payouts: %v", err)
		return err
	}

	var todayBookings int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)
	if err := db.Model(&models.Booking{}).
		Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).
		Count(&todayBookings).Error; err != nil {
		log.Printf("Error counting today's bookings: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	values := map[string]int64{
		CacheKeyGrossTotal:   s.Gross,
		CacheKeyFeesTotal:    s.Fees,
		CacheKeyRefundsTotal: s.Refunded,
		CacheKeyPayoutsTotal: payouts,
		CacheKeyUsers:        totalUsers,
		fmt.Sprintf(CacheKeyBookingsDaily, today): todayBookings,
	}
	for key, value := range values {
		if err := cache.Set(key, strconv.FormatInt(value, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", key, err)
			return err
		}
	}

	return nil
}

// getCachedInt64 reads a cached figure, falling back to 0 when absent.
func getCachedInt64(key string) int64 {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

// GetFinancialReport returns the platform financial report from cache,
// refreshing it when stale.
func GetFinancialReport() FinancialReport {
	UpdateCacheIfNeeded()

	today := time.Now().Format("2006-01-02")
	return FinancialReport{
		GrossMinor:        getCachedInt64(CacheKeyGrossTotal),
		PlatformFeesMinor: getCachedInt64(CacheKeyFeesTotal),
		RefundsMinor:      getCachedInt64(CacheKeyRefundsTotal),
		PayoutsMinor:      getCachedInt64(CacheKeyPayoutsTotal),
		BookingsToday:     getCachedInt64(fmt.Sprintf(CacheKeyBookingsDaily, today)),
		TotalUsers:        getCachedInt64(CacheKeyUsers),
	}
}
