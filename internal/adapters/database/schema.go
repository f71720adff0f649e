package database

// Warehouse DDL, issued once in dependency order. Surrogate keys are
// generated client-side; there are no views, procedures, or sequences.
//
// Column naming deliberately avoids the substrings NAME, TYPE, and UNIT
// anywhere in an identifier: the downstream NL-to-SQL validator rejects
// them. Hence ITEM_DESCRIPTION, RECORD_CATEGORY, MEASUREMENT_DIMENSION.
func SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS PATIENTS (
			PATIENT_ID VARCHAR(36) PRIMARY KEY,
			PATIENT_IDENTITY VARCHAR(255) NOT NULL,
			DATE_OF_BIRTH DATE,
			PATIENT_AGE NUMBER(3,0)
		)`,
		`CREATE TABLE IF NOT EXISTS IMPORTS (
			IMPORT_ID VARCHAR(36) PRIMARY KEY,
			PATIENT_ID VARCHAR(36) NOT NULL REFERENCES PATIENTS(PATIENT_ID),
			SOURCE_FILES VARCHAR,
			RECORDS_BY_CATEGORY VARCHAR,
			IMPORT_STATISTICS VARCHAR,
			TOTAL_RECORDS NUMBER(10,0),
			IMPORT_STATUS VARCHAR(20),
			CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
		)`,
		`CREATE TABLE IF NOT EXISTS HEALTH_RECORDS (
			RECORD_ID VARCHAR(36) PRIMARY KEY,
			PATIENT_ID VARCHAR(36) NOT NULL REFERENCES PATIENTS(PATIENT_ID),
			IMPORT_ID VARCHAR(36) NOT NULL REFERENCES IMPORTS(IMPORT_ID),
			RECORD_CATEGORY VARCHAR(20) NOT NULL,
			RECORD_DATE DATE,
			PROVIDER VARCHAR(255),
			ITEM_DESCRIPTION VARCHAR,
			VALUE_TEXT VARCHAR,
			VALUE_NUMERIC NUMBER(18,6),
			MEASUREMENT_DIMENSION VARCHAR(64),
			REFERENCE_RANGE VARCHAR(128),
			REF_RANGE_LOW NUMBER(18,6),
			REF_RANGE_HIGH NUMBER(18,6),
			FLAG VARCHAR(32),
			TEST_CATEGORY VARCHAR(128),
			DOSAGE VARCHAR(128),
			FORM VARCHAR(64),
			FOR_CONDITION VARCHAR(255),
			FREQUENCY VARCHAR(128),
			MEDICATION_STATUS VARCHAR(32),
			VITAL_CATEGORY VARCHAR(64),
			CONDITION_STATUS VARCHAR(32),
			VACCINE_CATEGORY VARCHAR(128),
			PROCEDURE_CATEGORY VARCHAR(128),
			ALLERGY_CATEGORY VARCHAR(64),
			SOURCE_FILE VARCHAR(255)
		)`,
	}
}
