package catalog

// Static reply content. Strings are user-facing Thai and must stay
// byte-identical to what the property pages and rich menus promise.

const (
	roomFallback = "เลือกรายละเอียดหัวข้อจาก Quick Reply ได้ค่ะ"
	fixFallback  = "เลือกหัวข้อจาก Quick Reply ได้เลยครับ/ค่ะ"
	resFallback  = "เลือกหัวข้อการจองจาก Quick Reply ได้เลยค่ะ"
)

var roomDetails = map[string]string{
	"ROOM_SIZE": `[ขนาด/เลย์เอาต์]
• Standard: ~22 ตร.ม. ระเบียง
• Corner Plus: ~23 ตร.ม. หน้าต่างมุม + ระเบียง
• Starter: ~22 ตร.ม. ระเบียง`,
	"ROOM_FURNITURE": `[เฟอร์นิเจอร์]
🛏️เตียง 5 ฟุต + ที่นอน
🚪ตู้เสื้อผ้า
🪑โต๊ะทำงาน + เก้าอี้
🪟ผ้าม่าน`,
	"ROOM_APPLIANCE": `[เครื่องใช้ไฟฟ้า]
❄️แอร์, เครื่องทำน้ำอุ่น
ตู้เย็น 200 บาท/เดือน`,
	"ROOM_RENT": `[ค่าเช่า]
• Standard (เฟอร์ครบ): 3,800–4,000 บ./ด.
• Corner Plus (เฟอร์ครบ): 4,100–4,300 บ./ด.
• Starter (ไม่มีเฟอร์): 3,500 บ./ด.`,
	"ROOM_UTIL": `[ค่าน้ำ-ไฟ/เน็ต]
น้ำ 18 | ไฟ 8
🛜เน็ต: ฟรี`,
	"ROOM_RENT_IMG": `[เรทราคา + ภาพ]`,
	"ROOM_DEPOSIT": `[เงินประกัน/สัญญา]
สัญญาเช่า 1 ปี (แพ็กหลัก)
ระยะสั้น 3 หรือ 6 เดือน: +200 บ./เดือน
(รายละเอียดเงินประกัน/ล่วงหน้า ระบุในวันทำสัญญา)`,
	"ROOM_PARKING": `[ที่จอดรถ]
🚗มีหลังคา 800/เดือน
🏍️มอเตอร์ไซต์ฟรี (มีหลังคา)`,
	"ROOM_EARLIEST": `[เข้าอยู่เร็วสุด]
    ตึก A พร้อมเข้าอยู่ 1 พ.ย.
    ตึก B พร้อมเข้าอยู่ 1 ธ.ค.

(เช็กห้องว่างได้ที่ “วิธีจอง”)`,
}

var fixDetails = map[string]string{
	"FIX_WATER":    "[น้ำ/ท่อรั่ว]\nปิดวาล์วน้ำชั่วคราว (ถ้าเข้าถึงได้) และถ่ายรูปจุดรั่ว แจ้งเลขห้อง+เวลาสะดวก ทีมช่างจะนัดเข้าซ่อมครับ/ค่ะ",
	"FIX_ELECTRIC": "[ไฟฟ้า/ระบบไฟ]\nปลั๊กหรือไฟดับ? แจ้งเลขห้องพร้อมอธิบายอาการครับ/ค่ะ",
	"FIX_OTHER":    "[อื่น ๆ]\nเพิ่มเติมรายละเอียดให้เรา เพื่อจัดการได้เร็วขึ้น",
}

var resDetails = map[string]string{
	"RES_HOWTO": bookingStepsText,
	"RES_CONFIRM": `[ยืนยันการจอง]
พิมพ์รหัสจอง #MMxxx ในแชทนี้ แล้วชำระค่าจองภายใน 2 ชั่วโมง
เจ้าหน้าที่จะยืนยันกลับทาง LINE ค่ะ`,
	"RES_DEPOSIT": `[ค่าจอง]
ค่าจองห้อง 1,000 บาท (หักจากเงินประกันวันทำสัญญา)
โอนแล้วส่งสลิปในแชทนี้ได้เลยค่ะ`,
}

// Button-label text to action code. Rich-menu quick replies render these
// labels; typing one verbatim answers the same content as tapping it.
var roomLabelToAct = map[string]string{
	"ขนาด/เลย์เอาต์":    "ROOM_SIZE",
	"เฟอร์นิเจอร์":      "ROOM_FURNITURE",
	"เครื่องใช้ไฟฟ้า":   "ROOM_APPLIANCE",
	"ค่าเช่า":           "ROOM_RENT",
	"ค่าน้ำ-ไฟ/เน็ต":    "ROOM_UTIL",
	"เงินประกัน/สัญญา":  "ROOM_DEPOSIT",
	"ที่จอดรถ":          "ROOM_PARKING",
	"เข้าอยู่เร็วสุด":   "ROOM_EARLIEST",
}

var fixLabelToAct = map[string]string{
	"น้ำ/ท่อรั่ว":         "FIX_WATER",
	"ไฟ/ปลั๊ก/เบรกเกอร์":  "FIX_ELECTRIC",
	"แอร์ไม่เย็น/น้ำหยด":  "FIX_AC",
	"ห้องน้ำ/สุขภัณฑ์":    "FIX_BATH",
	"ประตู/กุญแจ":         "FIX_DOOR",
	"เฟอร์นิเจอร์/อุปกรณ์": "FIX_FURN",
	"กลิ่น/เสียงรบกวน":    "FIX_SMELL",
	"อื่น ๆ":              "FIX_OTHER",
}

const contactMenuText = "📞 ช่องทางติดต่อหลัก\n" +
	"• แม่บ้าน (พี่ก้อย) 080-649-0441 ตึก A\n" +
	"• แม่บ้าน (พี่ยุ) ………………………. ตึก B\n" +
	"• ผู้จัดการ 082-798-1676"

const maidContactText = "แม่บ้าน (พี่ก้อย) 080-649-0441 ตึก A\n" +
	"แม่บ้าน (พี่ยุ) ………………………. ตึก B\n" +
	"ผู้จัดการ (พิม) 082-798-1676\n" +
	"โทรได้ทุกวัน 08:00-20:00 น."

const bookingStepsText = "[📅 วิธีจองห้องพัก]\n" +
	"\n" +
	"1) เข้า “ระบบจอง” ที่ลิงก์นี้: https://mamamansion-ar2.pages.dev/\n" +
	"2) กรอกข้อมูล เลือกห้องและวันที่เข้าอยู่ แล้วส่งฟอร์ม\n" +
	"3) ระบบออกเลขรหัส #MMxxx\n" +
	"4) พิมพ์รหัส #MMxxx ในแชทนี้\n" +
	"5) ชำระค่าจองและรอยืนยันจากเจ้าหน้าที่\n" +
	"6) ⚠️ หลังจองในเว็บไซต์ ต้องยืนยันและชำระค่าจองทาง LINE นี้ภายใน 2 ชั่วโมง มิฉะนั้นระบบจะยกเลิกอัตโนมัติ"

var defaultBookingImageURLs = [2]string{
	"https://drive.google.com/uc?export=view&id=146RJw9oS4fr1gEMiqrePMTwS-bXZYcZJ",
	"https://drive.google.com/uc?export=view&id=1Y6KUvNmw0wkBoSCldHNA38sBvrDniuR3",
}

var rentPriceImageURLs = [3]string{
	"https://drive.google.com/uc?export=view&id=1JhPEZkaGXMrpW3csld5UfzTkKpRXBiht",
	"https://drive.google.com/uc?export=view&id=1tc4ru8gKYB22W3nmw72lgKi1u17V6S5r",
	"https://drive.google.com/uc?export=view&id=1_Ic_e61aOaOdrcTtl9pJQoJSF1C8ch5o",
}

var contactPhrases = []string{"เบอร์ติดต่อ", "ติดต่อ", "เบอร์โทร", "ช่องทางติดต่อ", "contact", "phone"}

var maidPhrases = []string{"แม่บ้าน", "ติดต่อแม่บ้าน", "เบอร์แม่บ้าน", "โทรหาแม่บ้าน"}

var fridgeMenuPhrases = []string{"เช่าตู้เย็น", "ขอเช่าตู้เย็น", "ตู้เย็น"}

var parkingMenuPhrases = []string{"จองที่จอดรถ", "ขอที่จอดรถ"}

const fridgeMenuText = "บริการเช่าตู้เย็น 200 บาท/เดือน\nติดตั้งในห้องพัก แจ้งขอได้เลยค่ะ"

const parkingMenuText = "ที่จอดรถมีหลังคา 800 บาท/เดือน\nมอเตอร์ไซค์จอดฟรี แจ้งจองได้เลยค่ะ"

const fridgeAckText = "รับคำขอเช่าตู้เย็นแล้วค่ะ เจ้าหน้าที่จะติดต่อกลับโดยเร็ว"

const parkingAckText = "รับคำขอจองที่จอดรถแล้วค่ะ เจ้าหน้าที่จะติดต่อกลับโดยเร็ว"
