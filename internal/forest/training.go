package forest

import "time"

// TrainingStatus describes the offline health-forecasting model. The figures
// are a fixture: training happens out of band and no inference path ships in
// this service.
type TrainingStatus struct {
	ModelStatus            string            `json:"model_status"`
	ModelVersion           string            `json:"model_version"`
	LastTrained            time.Time         `json:"last_trained"`
	TrainingAccuracy       float64           `json:"training_accuracy"`
	ValidationAccuracy     float64           `json:"validation_accuracy"`
	ModelConfidence        float64           `json:"model_confidence"`
	TrainingMetrics        TrainingMetrics   `json:"training_metrics"`
	FeatureImportance      FeatureImportance `json:"feature_importance"`
	PredictionCapabilities []string          `json:"prediction_capabilities"`
	ModelPerformance       ModelPerformance  `json:"model_performance"`
	TrainingHistory        TrainingHistory   `json:"training_history"`
	NextTrainingScheduled  time.Time         `json:"next_training_scheduled"`
	ModelHealth            string            `json:"model_health"`
}

// TrainingMetrics summarizes the last training run.
type TrainingMetrics struct {
	EpochsCompleted int     `json:"epochs_completed"`
	TrainingLoss    float64 `json:"training_loss"`
	ValidationLoss  float64 `json:"validation_loss"`
	LearningRate    float64 `json:"learning_rate"`
	BatchSize       int     `json:"batch_size"`
	DatasetSize     int     `json:"dataset_size"`
}

// FeatureImportance weights the model inputs. The weights sum to 1.
type FeatureImportance struct {
	AirQuality   float64 `json:"air_quality"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Rainfall     float64 `json:"rainfall"`
	SoilPH       float64 `json:"soil_ph"`
	CanopyCover  float64 `json:"canopy_cover"`
	Biodiversity float64 `json:"biodiversity"`
}

// ModelPerformance holds the held-out evaluation scores.
type ModelPerformance struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	AUCROC    float64 `json:"auc_roc"`
}

// TrainingHistory aggregates across all training sessions.
type TrainingHistory struct {
	TotalTrainingSessions int    `json:"total_training_sessions"`
	DataPointsProcessed   int    `json:"data_points_processed"`
	AverageProcessingTime string `json:"average_processing_time"`
	LastImprovement       string `json:"last_improvement"`
}

var trainingStatus = TrainingStatus{
	ModelStatus:        "trained",
	ModelVersion:       "1.2.3",
	LastTrained:        time.Date(2024, time.October, 1, 10, 30, 0, 0, time.UTC),
	TrainingAccuracy:   0.912,
	ValidationAccuracy: 0.887,
	ModelConfidence:    0.923,
	TrainingMetrics: TrainingMetrics{
		EpochsCompleted: 120,
		TrainingLoss:    0.0821,
		ValidationLoss:  0.1034,
		LearningRate:    0.001,
		BatchSize:       32,
		DatasetSize:     10240,
	},
	FeatureImportance: FeatureImportance{
		AirQuality:   0.20,
		Temperature:  0.16,
		Humidity:     0.12,
		Rainfall:     0.10,
		SoilPH:       0.08,
		CanopyCover:  0.20,
		Biodiversity: 0.14,
	},
	PredictionCapabilities: []string{
		"Forest health forecasting (30-day accuracy: 89%)",
		"Air quality trend prediction (7-day accuracy: 92%)",
		"Carbon sequestration estimation (monthly accuracy: 87%)",
		"Biodiversity change detection (weekly accuracy: 85%)",
		"Environmental stress identification (real-time accuracy: 91%)",
	},
	ModelPerformance: ModelPerformance{
		Precision: 0.904,
		Recall:    0.881,
		F1Score:   0.892,
		AUCROC:    0.931,
	},
	TrainingHistory: TrainingHistory{
		TotalTrainingSessions: 21,
		DataPointsProcessed:   64000,
		AverageProcessingTime: "4 hours",
		LastImprovement:       "6 days ago",
	},
	NextTrainingScheduled: time.Date(2024, time.November, 1, 2, 0, 0, 0, time.UTC),
	ModelHealth:           "excellent",
}

// TrainingStatus reports the model fixture.
func (s *Service) TrainingStatus() TrainingStatus {
	return trainingStatus
}
