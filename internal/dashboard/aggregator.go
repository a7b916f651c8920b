// Package dashboard computes the derived metrics shown on the project
// dashboard. Everything here is pure arithmetic over rows already loaded
// from the database; the handlers own the queries.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
)

// MonthlyDelivery is the count of distinct projects delivered in one month
type MonthlyDelivery struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// DeliveriesByMonth groups the given information rows by month of their
// delivered date within the given year. Months without deliveries are
// omitted; the result is ordered month-ascending.
func DeliveriesByMonth(infos []model.Information, year int) []MonthlyDelivery {
	counts := make(map[int]map[uint]bool)
	for _, info := range infos {
		if info.DeliveredDate == nil || info.DeliveredDate.Year() != year {
			continue
		}
		month := int(info.DeliveredDate.Month())
		if counts[month] == nil {
			counts[month] = make(map[uint]bool)
		}
		counts[month][info.ProjectID] = true
	}

	months := make([]int, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Ints(months)

	result := make([]MonthlyDelivery, 0, len(months))
	for _, month := range months {
		result = append(result, MonthlyDelivery{Month: month, Count: len(counts[month])})
	}
	return result
}

// OnBudgetPercentage returns the percentage of rows whose current cost does
// not exceed the estimate, among rows that have both values set. Rounded to
// two decimals; 0 when no row qualifies.
func OnBudgetPercentage(infos []model.Information) float64 {
	total := 0
	onBudget := 0
	for _, info := range infos {
		if info.CostEstimate == nil || info.CurrentCost == nil {
			continue
		}
		total++
		if *info.CurrentCost <= *info.CostEstimate {
			onBudget++
		}
	}
	if total == 0 {
		return 0
	}
	return round2(float64(onBudget) / float64(total) * 100)
}

// AverageCosts returns the mean cost estimate and mean current cost. Each
// mean considers the rows where the value is set and is 0 when none is.
func AverageCosts(infos []model.Information) (avgEstimate, avgCurrent float64) {
	var sumEstimate, sumCurrent float64
	var nEstimate, nCurrent int
	for _, info := range infos {
		if info.CostEstimate != nil {
			sumEstimate += *info.CostEstimate
			nEstimate++
		}
		if info.CurrentCost != nil {
			sumCurrent += *info.CurrentCost
			nCurrent++
		}
	}
	if nEstimate > 0 {
		avgEstimate = round2(sumEstimate / float64(nEstimate))
	}
	if nCurrent > 0 {
		avgCurrent = round2(sumCurrent / float64(nCurrent))
	}
	return avgEstimate, avgCurrent
}

// AverageTimes returns the mean (delivered - start) and mean
// (current - start) in days across the rows that carry the needed dates.
func AverageTimes(infos []model.Information) (avgDelivery, avgElapsed float64) {
	var sumDelivery, sumElapsed float64
	var nDelivery, nElapsed int
	for _, info := range infos {
		if info.StartDate == nil {
			continue
		}
		if info.DeliveredDate != nil {
			sumDelivery += daysBetween(*info.StartDate, *info.DeliveredDate)
			nDelivery++
		}
		if info.CurrentDate != nil {
			sumElapsed += daysBetween(*info.StartDate, *info.CurrentDate)
			nElapsed++
		}
	}
	if nDelivery > 0 {
		avgDelivery = round2(sumDelivery / float64(nDelivery))
	}
	if nElapsed > 0 {
		avgElapsed = round2(sumElapsed / float64(nElapsed))
	}
	return avgDelivery, avgElapsed
}

// OnSchedulePercentage returns the percentage of rows whose elapsed time
// (current - start) does not exceed the planned delivery window
// (delivered - start), i.e. projects not yet overrunning schedule.
func OnSchedulePercentage(infos []model.Information) float64 {
	total := 0
	onSchedule := 0
	for _, info := range infos {
		if info.StartDate == nil || info.DeliveredDate == nil || info.CurrentDate == nil {
			continue
		}
		total++
		elapsed := daysBetween(*info.StartDate, *info.CurrentDate)
		planned := daysBetween(*info.StartDate, *info.DeliveredDate)
		if elapsed <= planned {
			onSchedule++
		}
	}
	if total == 0 {
		return 0
	}
	return round2(float64(onSchedule) / float64(total) * 100)
}

// TimelineAverageDays returns the mean day-delta between consecutive dated
// timeline entries, in insertion order. Entries without a date are skipped;
// fewer than two dated entries yield 0.
func TimelineAverageDays(dates []*time.Time) float64 {
	dated := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d != nil {
			dated = append(dated, *d)
		}
	}
	if len(dated) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(dated); i++ {
		sum += daysBetween(dated[i-1], dated[i])
	}
	return round2(sum / float64(len(dated)-1))
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
