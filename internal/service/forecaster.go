package service

import (
	"crypto/rand"
	"math/big"
)

// Forecast 预测结果
type Forecast struct {
	PredictedStock int
	Confidence     float64
}

// Forecaster 库存预测策略
type Forecaster interface {
	Forecast(currentStock, horizonDays int) Forecast
}

// RandomDecrementForecaster 占位策略：随机扣减 1..MaxDecrement
type RandomDecrementForecaster struct {
	MaxDecrement int
}

// NewRandomDecrementForecaster 默认扣减上限为 5
func NewRandomDecrementForecaster() *RandomDecrementForecaster {
	return &RandomDecrementForecaster{MaxDecrement: 5}
}

// Forecast 实现 Forecaster
func (f *RandomDecrementForecaster) Forecast(currentStock, horizonDays int) Forecast {
	limit := 5
	if f != nil && f.MaxDecrement > 0 {
		limit = f.MaxDecrement
	}
	decrement := 1
	if n, err := rand.Int(rand.Reader, big.NewInt(int64(limit))); err == nil {
		decrement += int(n.Int64())
	}
	predicted := currentStock - decrement
	return Forecast{
		PredictedStock: predicted,
		Confidence:     PredictionConfidence(currentStock - predicted),
	}
}

// PredictionConfidence 变化越小置信度越高
func PredictionConfidence(difference int) float64 {
	if difference < 0 {
		difference = -difference
	}
	switch {
	case difference <= 2:
		return 0.85
	case difference <= 5:
		return 0.70
	default:
		return 0.50
	}
}
