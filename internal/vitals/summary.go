package vitals

// Summarize aggregates readings for the monitoring dashboard. The latest reading is
// the one with the newest timestamp regardless of slice order.
func Summarize(readings []*Reading) Summary {
	s := Summary{CategoryCounts: map[Category]int{}}
	if len(readings) == 0 {
		return s
	}

	var (
		sysTotal, diaTotal int
		hrTotal, hrCount   int
		tempTotal          float64
		tempCount          int
	)
	for _, r := range readings {
		if r == nil {
			continue
		}
		s.Count++
		sysTotal += r.Systolic
		diaTotal += r.Diastolic
		if r.HeartRate != nil {
			hrTotal += *r.HeartRate
			hrCount++
		}
		if r.Temperature != nil {
			tempTotal += *r.Temperature
			tempCount++
		}

		category := ClassifyBloodPressure(r.Systolic, r.Diastolic)
		s.CategoryCounts[category]++
		if s.WorstCategory == "" || category.WorseThan(s.WorstCategory) {
			s.WorstCategory = category
		}
		if s.Latest == nil || r.Timestamp.After(s.Latest.Timestamp) {
			s.Latest = r
		}
	}
	if s.Count == 0 {
		return s
	}

	s.AvgSystolic = float64(sysTotal) / float64(s.Count)
	s.AvgDiastolic = float64(diaTotal) / float64(s.Count)
	if hrCount > 0 {
		avg := float64(hrTotal) / float64(hrCount)
		s.AvgHeartRate = &avg
	}
	if tempCount > 0 {
		avg := tempTotal / float64(tempCount)
		s.AvgTemperature = &avg
	}
	risk := ScoreRisk(*s.Latest)
	s.LatestRisk = &risk
	return s
}
